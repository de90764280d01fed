package cmd

import (
	"context"
	"time"

	"github.com/solvia-downloader/solvia/internal/config"
	"github.com/solvia-downloader/solvia/internal/download"
	"github.com/solvia-downloader/solvia/internal/engine/types"
	"github.com/solvia-downloader/solvia/internal/history"
	"github.com/solvia-downloader/solvia/internal/logging"
	"github.com/solvia-downloader/solvia/internal/metrics"
	"github.com/solvia-downloader/solvia/internal/result"
	"github.com/solvia-downloader/solvia/internal/utils"
)

// report persists the outcome of a run. Every step is best effort: failures
// are logged and never change the exit code.
func report(ctx context.Context, s *config.Settings, res types.DownloadResult, runErr error) {
	// An interrupted run still gets its result file
	ctx = context.WithoutCancel(ctx)
	finishedAt := time.Now()

	writeResult(ctx, s, res)

	if s.History.Enabled {
		recordHistory(ctx, config.GetHistoryPath(s), res, finishedAt)
	}

	if path := s.Metrics.TextfilePath; path != "" {
		m := metrics.NewRun()
		m.Observe(res, download.Category(runErr), finishedAt)
		if err := m.WriteTextfile(path); err != nil {
			logging.Errorf("Error writing metrics: %v", err)
		}
	}
}

// writeResult stores JobResult.json in the destination directory, or in the
// fallback directory when there is none or it cannot be written.
func writeResult(ctx context.Context, s *config.Settings, res types.DownloadResult) {
	fallback := config.GetFallbackResultDir(s)
	dir := res.DestinationDirectory
	if dir == "" {
		dir = fallback
	}

	path, err := result.Write(ctx, dir, res)
	if err != nil && dir != fallback {
		logging.Errorf("Error writing result file: %v", err)
		path, err = result.Write(ctx, fallback, res)
	}
	if err != nil {
		logging.Errorf("Error writing result file: %v", err)
		return
	}
	logging.Infof("Result written: %s", path)
}

func recordHistory(ctx context.Context, path string, res types.DownloadResult, finishedAt time.Time) {
	store, err := history.Open(ctx, path)
	if err != nil {
		logging.Errorf("Error opening history: %v", err)
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.Record(ctx, res, finishedAt); err != nil {
		logging.Errorf("Error recording history: %v", err)
		return
	}

	// recent[0] is the run just recorded
	if recent, err := store.Recent(ctx, 2); err == nil && len(recent) == 2 {
		prev := recent[1]
		outcome := "succeeded"
		if !prev.Success {
			outcome = "failed"
		}
		logging.Infof("Previous run: %s %s at %s", prev.URL, outcome, prev.FinishedAt.Format(logging.TimeLayout))
	}
	if st, err := store.Summary(ctx); err == nil {
		logging.Infof("History: %d runs, %d succeeded, %s downloaded",
			st.Runs, st.Succeeded, utils.ConvertBytesToHumanReadable(st.Bytes))
	}
}
