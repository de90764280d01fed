package cmd

import (
	"strings"
)

// cliArgs holds the recognised command line keys
type cliArgs struct {
	URL        string
	SaveTo     string
	ConfigPath string
	Version    bool
	Help       bool
}

// parseArgs scans "-key value" pairs. Keys are case-insensitive and may be
// written with one or two dashes. A value that itself starts with "-" is not
// consumed, so "-url -saveto x" leaves url unset. Unknown keys are ignored.
func parseArgs(args []string) cliArgs {
	var out cliArgs
	values := make(map[string]string)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		key := strings.ToLower(strings.TrimLeft(arg, "-"))

		switch key {
		case "version", "v":
			out.Version = true
			continue
		case "help", "h", "?":
			out.Help = true
			continue
		}

		if i+1 >= len(args) {
			break
		}
		if next := args[i+1]; !strings.HasPrefix(next, "-") {
			values[key] = next
			i++
		}
	}

	out.URL = values["url"]
	out.SaveTo = values["saveto"]
	out.ConfigPath = values["config"]
	return out
}
