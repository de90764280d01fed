package utils

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrNoFilePath is returned for a URL whose path does not name a file
var ErrNoFilePath = errors.New("url has no file path")

// DestinationPath maps a URL onto a file below base by appending the URL
// path to base.
// Example: https://example.com/a/b/file.zip, /data -> /data/a/b/file.zip
//
// Query and fragment are ignored and percent-escapes are decoded. A URL with
// no path is rejected with ErrNoFilePath. Paths that climb out of base are
// rejected too.
func DestinationPath(rawURL, base string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	// Remove leading slash
	urlPath := strings.TrimPrefix(parsed.Path, "/")

	cleanBase := filepath.Clean(base)
	dest := filepath.Join(cleanBase, filepath.FromSlash(urlPath))

	rel, err := filepath.Rel(cleanBase, dest)
	if err == nil && rel == "." {
		return "", fmt.Errorf("%w: %q", ErrNoFilePath, rawURL)
	}
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("url path %q escapes destination directory", parsed.Path)
	}
	return dest, nil
}
