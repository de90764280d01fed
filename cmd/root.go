package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/solvia-downloader/solvia/internal/config"
	"github.com/solvia-downloader/solvia/internal/console"
	"github.com/solvia-downloader/solvia/internal/download"
	"github.com/solvia-downloader/solvia/internal/engine/types"
	"github.com/solvia-downloader/solvia/internal/logging"
)

// Process exit codes
const (
	ExitSuccess          = 0
	ExitInvalidArguments = 1
	ExitFailure          = 2
)

// logFlushTimeout bounds how long the exit path waits for queued log lines
const logFlushTimeout = 10 * time.Second

// exitError carries a non-zero exit code out of cobra's RunE
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// newRootCmd builds the command. Flag parsing is left to parseArgs so that
// single-dash long keys like -saveto keep working.
func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solvia-downloader -url <absolute URL> -saveto <directory> [-config <file>]",
		Short: "Download one HTTP(S) resource into a directory tree",
		Long: `SolviaDownloader fetches a single file over HTTP or HTTPS and stores it
below the -saveto directory, mirroring the URL path. The outcome is written to
JobResult.json next to the file and the process exits with 0 on success,
1 on invalid arguments and 2 on any other failure.`,
		Version:            types.Version,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := run(cmd, args); code != ExitSuccess {
				return &exitError{code: code}
			}
			return nil
		},
	}
}

// Execute runs the command with os.Args and exits the process
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := ExecuteContext(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// ExecuteContext runs the command with args and returns the exit code
func ExecuteContext(ctx context.Context, args []string, out io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	_, _ = fmt.Fprintf(out, "Error: %v\n", err)
	return ExitFailure
}

func run(cmd *cobra.Command, args []string) int {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	start := time.Now()

	a := parseArgs(args)
	if a.Version {
		_, _ = fmt.Fprintf(out, "%s version %s\n", types.AppName, types.Version)
		return ExitSuccess
	}
	if a.Help {
		_ = cmd.Help()
		return ExitSuccess
	}

	settings, cfgErr := config.LoadSettings(a.ConfigPath)
	if cfgErr != nil {
		settings = config.DefaultSettings()
	}

	logOpts := logging.Options{Level: settings.General.LogLevel}
	if settings.General.ConsoleLog {
		logOpts.Console = os.Stderr
	}
	logPath := filepath.Join(config.GetLogsDir(settings), config.LogFileName(start))
	if err := logging.Init(logPath, logOpts); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	defer flushLogs()

	logging.Infof("%s started.", types.AppName)
	logging.LogEnvironment()

	con := console.New(out, console.Options{})

	if cfgErr != nil {
		logging.Errorf("Error loading settings: %v", cfgErr)
		con.Error(cfgErr.Error())
		return invalidArguments(ctx, settings, a, start, con)
	}

	req, err := types.NewDownloadRequest(a.URL, a.SaveTo)
	if err != nil {
		logging.Errorf("Argument error: %v", err)
		return invalidArguments(ctx, settings, a, start, con)
	}

	logging.Infof("URL: %s", req.SourceURL)
	logging.Infof("Base directory: %s", req.DestinationBasePath)
	con.Banner(types.AppName, types.Version, req.SourceURL)

	job := download.NewJob(req, types.ConvertRuntimeConfig(settings.ToRuntimeConfig()), nil)
	res, runErr := runJob(ctx, job, con)

	report(ctx, settings, res, runErr)

	if res.Success {
		logging.Infof("%s completed successfully.", types.AppName)
		return ExitSuccess
	}
	return exitCode(runErr)
}

// runJob executes job while streaming its events to con. A panic is turned
// into a failed result.
func runJob(ctx context.Context, job *download.Job, con *console.Console) (res types.DownloadResult, err error) {
	eventsCh := make(chan any, 64)
	job.Events = eventsCh

	consoleDone := make(chan struct{})
	go func() {
		con.Run(eventsCh)
		close(consoleDone)
	}()

	start := time.Now()
	defer func() {
		r := recover()
		close(eventsCh)
		<-consoleDone
		if r == nil {
			return
		}
		logging.Errorf("Fatal error: %v", r)
		err = fmt.Errorf("fatal error: %v", r)
		res = types.DownloadResult{
			RunID:           job.RunID,
			URL:             job.Request.SourceURL,
			ErrorMessage:    fmt.Sprint(r),
			DurationSeconds: time.Since(start).Seconds(),
		}
		con.Error(res.ErrorMessage)
	}()

	res = job.Run(ctx)
	return res, job.Err()
}

func invalidArguments(ctx context.Context, s *config.Settings, a cliArgs, start time.Time, con *console.Console) int {
	con.Println("Usage: solvia-downloader -url <absolute URL> -saveto <directory>")
	logging.Error(download.InvalidArgumentsMessage)

	res := types.DownloadResult{
		RunID:           uuid.New().String(),
		URL:             a.URL,
		ErrorMessage:    download.InvalidArgumentsMessage,
		DurationSeconds: time.Since(start).Seconds(),
	}
	report(ctx, s, res, download.ErrInvalidArguments)
	return ExitInvalidArguments
}

func exitCode(err error) int {
	if errors.Is(err, download.ErrInvalidArguments) {
		return ExitInvalidArguments
	}
	return ExitFailure
}

func flushLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), logFlushTimeout)
	defer cancel()
	if err := logging.Shutdown(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
