package events

import (
	"time"

	"github.com/solvia-downloader/solvia/internal/engine/progress"
	"github.com/solvia-downloader/solvia/internal/engine/types"
)

// ProgressMsg represents a progress update from the copy loop
type ProgressMsg struct {
	DownloadID string
	Snapshot   progress.Snapshot
	Elapsed    time.Duration
	Forced     bool // Emitted by the ticker rather than after a chunk
}

// PhaseChangedMsg is sent on every orchestrator state transition
type PhaseChangedMsg struct {
	DownloadID string
	From       string
	To         string
}

// DownloadStartedMsg is sent once the connection succeeded and streaming begins
type DownloadStartedMsg struct {
	DownloadID string
	URL        string
	Filename   string
	Total      int64                // -1 when unknown
	DestPath   string               // Full path to the destination file
	State      *types.ProgressState `json:"-"`
}

// DownloadCompleteMsg signals that the download finished successfully
type DownloadCompleteMsg struct {
	DownloadID string
	Filename   string
	Elapsed    time.Duration
	Total      int64
	SpeedMBps  float64
}

// DownloadErrorMsg signals that the run failed
type DownloadErrorMsg struct {
	DownloadID string
	Filename   string
	Err        error
}

// Send delivers msg on ch. Progress updates are dropped when the consumer
// is behind; every other message blocks until delivered. A nil ch discards.
func Send(ch chan<- any, msg any) {
	if ch == nil {
		return
	}
	if _, ok := msg.(ProgressMsg); ok {
		select {
		case ch <- msg:
		default:
		}
		return
	}
	ch <- msg
}
