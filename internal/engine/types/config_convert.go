package types

import "github.com/solvia-downloader/solvia/internal/config"

// ConvertRuntimeConfig converts the app-level RuntimeConfig to the engine-level RuntimeConfig.
func ConvertRuntimeConfig(rc *config.RuntimeConfig) *RuntimeConfig {
	if rc == nil {
		return nil
	}
	return &RuntimeConfig{
		UserAgent:         rc.UserAgent,
		RequestTimeout:    rc.RequestTimeout,
		MaxRedirects:      rc.MaxRedirects,
		SkipTLSVerify:     rc.SkipTLSVerify,
		BufferSize:        rc.BufferSize,
		ProgressInterval:  rc.ProgressInterval,
		MinReportInterval: rc.MinReportInterval,
	}
}
