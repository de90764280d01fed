package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AppName names the fallback result directory and the log files
const AppName = "SolviaDownloader"

// GetAppDir returns the directory containing the running executable,
// or the working directory if that cannot be resolved.
func GetAppDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// GetLogsDir returns the configured logs directory or "Logs" beside the executable
func GetLogsDir(s *Settings) string {
	if s != nil && s.General.LogsDir != "" {
		return s.General.LogsDir
	}
	return filepath.Join(GetAppDir(), "Logs")
}

// LogFileName returns the per-invocation log file name for the given start time
func LogFileName(start time.Time) string {
	return AppName + "Log_" + start.Format("20060102_150405") + ".txt"
}

// GetFallbackResultDir returns where JobResult.json goes when no destination
// directory could be determined.
func GetFallbackResultDir(s *Settings) string {
	if s != nil && s.Result.FallbackDir != "" {
		return s.Result.FallbackDir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, AppName)
}

// GetHistoryPath returns the SQLite history database path
func GetHistoryPath(s *Settings) string {
	if s != nil && s.History.DatabasePath != "" {
		return s.History.DatabasePath
	}
	return filepath.Join(GetFallbackResultDir(s), "history.db")
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}
