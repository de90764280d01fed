package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is prepended to every settings key looked up in the environment,
// e.g. SOLVIA_CONNECTIONS_USER_AGENT.
const EnvPrefix = "SOLVIA"

// LoadSettings loads settings from configPath, or from settings.{yaml,json,toml}
// in the app dir or $HOME/.solvia when configPath is empty. Environment
// variables override file values. A missing default file is not an error.
func LoadSettings(configPath string) (*Settings, error) {
	settings := DefaultSettings()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("settings")
		v.AddConfigPath(GetAppDir())
		v.AddConfigPath("$HOME/.solvia")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v, settings)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	settings.General.LogsDir = expandPath(settings.General.LogsDir)
	settings.Result.FallbackDir = expandPath(settings.Result.FallbackDir)
	settings.History.DatabasePath = expandPath(settings.History.DatabasePath)
	settings.Metrics.TextfilePath = expandPath(settings.Metrics.TextfilePath)

	if err := Validate(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// registerDefaults makes every key known to viper so AutomaticEnv can bind it
// during Unmarshal.
func registerDefaults(v *viper.Viper, s *Settings) {
	v.SetDefault("general.logs_dir", s.General.LogsDir)
	v.SetDefault("general.log_level", s.General.LogLevel)
	v.SetDefault("general.console_log", s.General.ConsoleLog)

	v.SetDefault("connections.user_agent", s.Connections.UserAgent)
	v.SetDefault("connections.request_timeout", s.Connections.RequestTimeout)
	v.SetDefault("connections.max_redirects", s.Connections.MaxRedirects)
	v.SetDefault("connections.skip_tls_verify", s.Connections.SkipTLSVerify)

	v.SetDefault("transfer.buffer_size", s.Transfer.BufferSize)
	v.SetDefault("transfer.progress_interval", s.Transfer.ProgressInterval)
	v.SetDefault("transfer.min_report_interval", s.Transfer.MinReportInterval)

	v.SetDefault("result.fallback_dir", s.Result.FallbackDir)

	v.SetDefault("history.enabled", s.History.Enabled)
	v.SetDefault("history.database_path", s.History.DatabasePath)

	v.SetDefault("metrics.textfile_path", s.Metrics.TextfilePath)
}

// Validate checks settings for values the engine cannot work with
func Validate(s *Settings) error {
	if s.General.LogLevel == "" {
		s.General.LogLevel = "info"
	}
	if _, err := zapcore.ParseLevel(s.General.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", s.General.LogLevel)
	}
	if s.Connections.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if s.Connections.MaxRedirects < 0 {
		return fmt.Errorf("max redirects cannot be negative")
	}
	if s.Transfer.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive")
	}
	if s.Transfer.ProgressInterval <= 0 {
		return fmt.Errorf("progress interval must be positive")
	}
	if s.Transfer.MinReportInterval < 0 {
		return fmt.Errorf("min report interval cannot be negative")
	}
	return nil
}
