// Package progress turns byte counters into percentage and throughput figures.
package progress

import (
	"fmt"

	"github.com/solvia-downloader/solvia/internal/engine/types"
)

// Snapshot is one progress observation
type Snapshot struct {
	Bytes         int64
	Total         int64 // -1 when unknown
	Percentage    int
	HasPercentage bool
	SpeedMBps     float64
	ReceivedMB    int64
	TotalMB       int64
}

// Compute derives a snapshot from the transferred bytes, the expected total
// (<= 0 means unknown) and the seconds elapsed since the transfer started.
// Speed is 0 when no time has elapsed.
func Compute(bytesTransferred, totalBytes int64, elapsedSeconds float64) Snapshot {
	s := Snapshot{
		Bytes:      bytesTransferred,
		Total:      -1,
		ReceivedMB: bytesTransferred / types.MB,
	}
	if elapsedSeconds > 0 {
		s.SpeedMBps = float64(bytesTransferred) / elapsedSeconds / types.Megabyte
	}
	if totalBytes > 0 {
		s.Total = totalBytes
		s.TotalMB = totalBytes / types.MB
		s.HasPercentage = true
		s.Percentage = int(bytesTransferred * 100 / totalBytes)
	}
	return s
}

// Fraction returns completion in [0, 1], or 0 when the total is unknown
func (s Snapshot) Fraction() float64 {
	if !s.HasPercentage {
		return 0
	}
	f := float64(s.Bytes) / float64(s.Total)
	if f > 1 {
		return 1
	}
	return f
}

// LogLine formats the snapshot for the log file
func (s Snapshot) LogLine() string {
	if s.HasPercentage {
		return fmt.Sprintf("Progress: %d%% (%d/%d MB, %.2f MB/s)", s.Percentage, s.ReceivedMB, s.TotalMB, s.SpeedMBps)
	}
	return fmt.Sprintf("Progress: %d MB received (%.2f MB/s)", s.ReceivedMB, s.SpeedMBps)
}

// ConsoleLine formats the snapshot for the in-place console line
func (s Snapshot) ConsoleLine() string {
	if s.HasPercentage {
		return fmt.Sprintf("Progress: %d%% (%d MB / %d MB) - %.2f MB/s", s.Percentage, s.ReceivedMB, s.TotalMB, s.SpeedMBps)
	}
	return fmt.Sprintf("Progress: %d MB - %.2f MB/s", s.ReceivedMB, s.SpeedMBps)
}
