package types

import (
	"errors"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

// DownloadRequest is the validated input of one job
type DownloadRequest struct {
	SourceURL           string
	DestinationBasePath string
}

// NewDownloadRequest validates and builds a DownloadRequest.
// The source URL must be absolute (scheme and host present).
func NewDownloadRequest(sourceURL, basePath string) (DownloadRequest, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	basePath = strings.TrimSpace(basePath)
	if sourceURL == "" {
		return DownloadRequest{}, errors.New("url is required")
	}
	if basePath == "" {
		return DownloadRequest{}, errors.New("saveto is required")
	}
	u, err := url.Parse(sourceURL)
	if err != nil {
		return DownloadRequest{}, err
	}
	if !u.IsAbs() || u.Host == "" {
		return DownloadRequest{}, errors.New("url must be absolute")
	}
	return DownloadRequest{SourceURL: sourceURL, DestinationBasePath: basePath}, nil
}

// ProgressState is the transfer state shared between the copy loop and the
// progress ticker. Only the copy loop mutates Downloaded.
type ProgressState struct {
	ID         string
	Downloaded atomic.Int64
	TotalSize  int64 // -1 when the server did not report a length
	StartTime  time.Time
	Done       atomic.Bool
}

// NewProgressState creates the state for one transfer, starting its clock now
func NewProgressState(id string, total int64) *ProgressState {
	if total <= 0 {
		total = -1
	}
	return &ProgressState{
		ID:        id,
		TotalSize: total,
		StartTime: time.Now(),
	}
}

// DownloadResult is the outcome of one invocation
type DownloadResult struct {
	RunID                string
	URL                  string
	Success              bool
	ErrorMessage         string
	DownloadedFile       string
	FileSize             int64
	DurationSeconds      float64
	DestinationDirectory string
	AverageSpeedMBps     float64
}

// AverageSpeedMBps returns size / elapsed in MiB per second, or 0 when no time elapsed
func AverageSpeedMBps(size int64, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(size) / secs / Megabyte
}
