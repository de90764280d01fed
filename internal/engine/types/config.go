package types

import (
	"fmt"
	"time"
)

// Size constants
const (
	KB = 1024
	MB = 1024 * KB
	GB = 1024 * MB

	// Megabyte as float for speed calculations
	Megabyte = 1024.0 * 1024.0
)

// Transfer constants
const (
	ChunkSize         = 1 * MB          // Read buffer for the copy loop
	ProgressInterval  = 5 * time.Second // Forced progress emission period
	MinReportInterval = 5 * time.Second // Minimum gap between throttled emissions
)

// HTTP Client Tuning
const (
	RequestTimeout               = 30 * time.Minute // Bounds the whole request including body
	MaxRedirects                 = 10
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultExpectContinueTimeout = 1 * time.Second
	DialTimeout                  = 30 * time.Second
	KeepAliveDuration            = 30 * time.Second
)

// AppName is used for log file names, the fallback result directory and the user agent
const AppName = "SolviaDownloader"

// RuntimeConfig holds dynamic settings that can override defaults
type RuntimeConfig struct {
	UserAgent         string
	RequestTimeout    time.Duration
	MaxRedirects      int
	SkipTLSVerify     bool
	BufferSize        int
	ProgressInterval  time.Duration
	MinReportInterval time.Duration
}

// GetUserAgent returns the configured user agent or the default
func (r *RuntimeConfig) GetUserAgent() string {
	if r == nil || r.UserAgent == "" {
		return fmt.Sprintf("%s/%s", AppName, Version)
	}
	return r.UserAgent
}

// GetRequestTimeout returns configured value or default
func (r *RuntimeConfig) GetRequestTimeout() time.Duration {
	if r == nil || r.RequestTimeout <= 0 {
		return RequestTimeout
	}
	return r.RequestTimeout
}

// GetMaxRedirects returns configured value or default
func (r *RuntimeConfig) GetMaxRedirects() int {
	if r == nil || r.MaxRedirects <= 0 {
		return MaxRedirects
	}
	return r.MaxRedirects
}

// GetBufferSize returns configured value or default
func (r *RuntimeConfig) GetBufferSize() int {
	if r == nil || r.BufferSize <= 0 {
		return ChunkSize
	}
	return r.BufferSize
}

// GetProgressInterval returns configured value or default
func (r *RuntimeConfig) GetProgressInterval() time.Duration {
	if r == nil || r.ProgressInterval <= 0 {
		return ProgressInterval
	}
	return r.ProgressInterval
}

// GetMinReportInterval returns configured value or default
func (r *RuntimeConfig) GetMinReportInterval() time.Duration {
	if r == nil || r.MinReportInterval <= 0 {
		return MinReportInterval
	}
	return r.MinReportInterval
}

// Version is set via ldflags during build
var Version = "dev"
