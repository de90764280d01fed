package config

import (
	"time"
)

// Settings holds all user-configurable application settings organized by category.
type Settings struct {
	General     GeneralSettings    `mapstructure:"general"`
	Connections ConnectionSettings `mapstructure:"connections"`
	Transfer    TransferSettings   `mapstructure:"transfer"`
	Result      ResultSettings     `mapstructure:"result"`
	History     HistorySettings    `mapstructure:"history"`
	Metrics     MetricsSettings    `mapstructure:"metrics"`
}

// GeneralSettings contains logging and console behavior.
type GeneralSettings struct {
	LogsDir    string `mapstructure:"logs_dir"`    // Empty means "Logs" beside the executable
	LogLevel   string `mapstructure:"log_level"`   // debug, info, warn, error
	ConsoleLog bool   `mapstructure:"console_log"` // Also mirror log lines to stderr
}

// ConnectionSettings contains HTTP client parameters.
type ConnectionSettings struct {
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRedirects   int           `mapstructure:"max_redirects"`
	SkipTLSVerify  bool          `mapstructure:"skip_tls_verify"`
}

// TransferSettings contains copy loop tuning.
type TransferSettings struct {
	BufferSize        int           `mapstructure:"buffer_size"`
	ProgressInterval  time.Duration `mapstructure:"progress_interval"`
	MinReportInterval time.Duration `mapstructure:"min_report_interval"`
}

// ResultSettings controls where JobResult.json goes when no destination is known.
type ResultSettings struct {
	FallbackDir string `mapstructure:"fallback_dir"`
}

// HistorySettings controls the SQLite run ledger.
type HistorySettings struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"` // Empty means history.db in the fallback dir
}

// MetricsSettings controls the Prometheus textfile export.
type MetricsSettings struct {
	TextfilePath string `mapstructure:"textfile_path"` // Empty disables the export
}

const (
	KB = 1024
	MB = 1024 * KB
)

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		General: GeneralSettings{
			LogLevel:   "info",
			ConsoleLog: false,
		},
		Connections: ConnectionSettings{
			UserAgent:      "", // Empty means use default UA
			RequestTimeout: 30 * time.Minute,
			MaxRedirects:   10,
		},
		Transfer: TransferSettings{
			BufferSize:        1 * MB,
			ProgressInterval:  5 * time.Second,
			MinReportInterval: 5 * time.Second,
		},
	}
}

// RuntimeConfig is the subset of Settings the download engine consumes.
type RuntimeConfig struct {
	UserAgent         string
	RequestTimeout    time.Duration
	MaxRedirects      int
	SkipTLSVerify     bool
	BufferSize        int
	ProgressInterval  time.Duration
	MinReportInterval time.Duration
}

// ToRuntimeConfig creates a RuntimeConfig from user Settings
func (s *Settings) ToRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		UserAgent:         s.Connections.UserAgent,
		RequestTimeout:    s.Connections.RequestTimeout,
		MaxRedirects:      s.Connections.MaxRedirects,
		SkipTLSVerify:     s.Connections.SkipTLSVerify,
		BufferSize:        s.Transfer.BufferSize,
		ProgressInterval:  s.Transfer.ProgressInterval,
		MinReportInterval: s.Transfer.MinReportInterval,
	}
}
