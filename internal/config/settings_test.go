package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings == nil {
		t.Fatal("DefaultSettings returned nil")
	}

	t.Run("GeneralSettings", func(t *testing.T) {
		if settings.General.LogLevel != "info" {
			t.Errorf("LogLevel should default to info, got: %s", settings.General.LogLevel)
		}
		if settings.General.ConsoleLog {
			t.Error("ConsoleLog should be false by default")
		}
		if settings.General.LogsDir != "" {
			t.Errorf("LogsDir should be empty by default, got: %s", settings.General.LogsDir)
		}
	})

	t.Run("ConnectionSettings", func(t *testing.T) {
		if settings.Connections.RequestTimeout != 30*time.Minute {
			t.Errorf("RequestTimeout should be 30m, got: %v", settings.Connections.RequestTimeout)
		}
		if settings.Connections.MaxRedirects != 10 {
			t.Errorf("MaxRedirects should be 10, got: %d", settings.Connections.MaxRedirects)
		}
		if settings.Connections.SkipTLSVerify {
			t.Error("SkipTLSVerify should be false by default")
		}
	})

	t.Run("TransferSettings", func(t *testing.T) {
		if settings.Transfer.BufferSize != 1*MB {
			t.Errorf("BufferSize should be 1MB, got: %d", settings.Transfer.BufferSize)
		}
		if settings.Transfer.ProgressInterval != 5*time.Second {
			t.Errorf("ProgressInterval should be 5s, got: %v", settings.Transfer.ProgressInterval)
		}
		if settings.Transfer.MinReportInterval != 5*time.Second {
			t.Errorf("MinReportInterval should be 5s, got: %v", settings.Transfer.MinReportInterval)
		}
	})

	t.Run("OptionalRecorders", func(t *testing.T) {
		if settings.History.Enabled {
			t.Error("History should be disabled by default")
		}
		if settings.Metrics.TextfilePath != "" {
			t.Error("Metrics export should be disabled by default")
		}
	})
}

func TestDefaultSettings_Valid(t *testing.T) {
	if err := Validate(DefaultSettings()); err != nil {
		t.Fatalf("default settings should validate: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"bad level", func(s *Settings) { s.General.LogLevel = "loud" }},
		{"zero timeout", func(s *Settings) { s.Connections.RequestTimeout = 0 }},
		{"negative redirects", func(s *Settings) { s.Connections.MaxRedirects = -1 }},
		{"zero buffer", func(s *Settings) { s.Transfer.BufferSize = 0 }},
		{"zero interval", func(s *Settings) { s.Transfer.ProgressInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			if err := Validate(s); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestToRuntimeConfig(t *testing.T) {
	s := DefaultSettings()
	s.Connections.UserAgent = "agent/2"
	s.Connections.SkipTLSVerify = true
	s.Transfer.BufferSize = 64 * KB

	rc := s.ToRuntimeConfig()
	if rc.UserAgent != "agent/2" {
		t.Errorf("UserAgent: got %q", rc.UserAgent)
	}
	if !rc.SkipTLSVerify {
		t.Error("SkipTLSVerify not copied")
	}
	if rc.BufferSize != 64*KB {
		t.Errorf("BufferSize: got %d", rc.BufferSize)
	}
	if rc.RequestTimeout != s.Connections.RequestTimeout {
		t.Errorf("RequestTimeout: got %v", rc.RequestTimeout)
	}
	if rc.ProgressInterval != s.Transfer.ProgressInterval || rc.MinReportInterval != s.Transfer.MinReportInterval {
		t.Error("intervals not copied")
	}
	if rc.MaxRedirects != s.Connections.MaxRedirects {
		t.Errorf("MaxRedirects: got %d", rc.MaxRedirects)
	}
}

func TestLoadSettings_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	content := `
general:
  log_level: error
  logs_dir: /var/log/solvia
connections:
  user_agent: pipeline/1.0
  request_timeout: 10m
transfer:
  progress_interval: 2s
history:
  enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.General.LogLevel != "error" {
		t.Errorf("LogLevel: got %s", s.General.LogLevel)
	}
	if s.General.LogsDir != "/var/log/solvia" {
		t.Errorf("LogsDir: got %s", s.General.LogsDir)
	}
	if s.Connections.UserAgent != "pipeline/1.0" {
		t.Errorf("UserAgent: got %s", s.Connections.UserAgent)
	}
	if s.Connections.RequestTimeout != 10*time.Minute {
		t.Errorf("RequestTimeout: got %v", s.Connections.RequestTimeout)
	}
	if s.Transfer.ProgressInterval != 2*time.Second {
		t.Errorf("ProgressInterval: got %v", s.Transfer.ProgressInterval)
	}
	if !s.History.Enabled {
		t.Error("History.Enabled should be true")
	}
	// Untouched keys keep defaults
	if s.Transfer.BufferSize != 1*MB {
		t.Errorf("BufferSize should keep default, got %d", s.Transfer.BufferSize)
	}
}

func TestLoadSettings_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("connections:\n  user_agent: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SOLVIA_CONNECTIONS_USER_AGENT", "from-env")
	t.Setenv("SOLVIA_TRANSFER_BUFFER_SIZE", "4096")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Connections.UserAgent != "from-env" {
		t.Errorf("env should override file, got %s", s.Connections.UserAgent)
	}
	if s.Transfer.BufferSize != 4096 {
		t.Errorf("BufferSize: got %d", s.Transfer.BufferSize)
	}
}

func TestLoadSettings_MissingExplicitFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("transfer:\n  buffer_size: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadSettings(path)
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected invalid configuration error, got %v", err)
	}
}

func TestPaths(t *testing.T) {
	s := DefaultSettings()

	if !strings.HasSuffix(GetLogsDir(s), "Logs") {
		t.Errorf("default logs dir should end in Logs, got %s", GetLogsDir(s))
	}
	if !strings.HasSuffix(GetFallbackResultDir(s), AppName) {
		t.Errorf("default fallback dir should end in %s, got %s", AppName, GetFallbackResultDir(s))
	}

	s.General.LogsDir = "/x/logs"
	s.Result.FallbackDir = "/x/results"
	if GetLogsDir(s) != "/x/logs" {
		t.Errorf("GetLogsDir: got %s", GetLogsDir(s))
	}
	if GetFallbackResultDir(s) != "/x/results" {
		t.Errorf("GetFallbackResultDir: got %s", GetFallbackResultDir(s))
	}
	if GetHistoryPath(s) != filepath.Join("/x/results", "history.db") {
		t.Errorf("GetHistoryPath: got %s", GetHistoryPath(s))
	}
}

func TestLogFileName(t *testing.T) {
	start := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	if got := LogFileName(start); got != "SolviaDownloaderLog_20240309_140507.txt" {
		t.Errorf("LogFileName: got %s", got)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("SOLVIA_TEST_ROOT", "/data")
	if got := expandPath("$SOLVIA_TEST_ROOT/out"); got != "/data/out" {
		t.Errorf("expandPath env: got %s", got)
	}
	home, err := os.UserHomeDir()
	if err == nil {
		if got := expandPath("~/x"); got != filepath.Join(home, "x") {
			t.Errorf("expandPath home: got %s", got)
		}
	}
	if expandPath("") != "" {
		t.Error("empty path should stay empty")
	}
}
