// Package download runs one download job: it resolves the destination,
// connects, streams the body to disk and assembles the outcome.
package download

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/solvia-downloader/solvia/internal/engine/events"
	"github.com/solvia-downloader/solvia/internal/engine/progress"
	"github.com/solvia-downloader/solvia/internal/engine/single"
	"github.com/solvia-downloader/solvia/internal/engine/types"
	"github.com/solvia-downloader/solvia/internal/logging"
	"github.com/solvia-downloader/solvia/internal/utils"
)

// Job downloads Request.SourceURL below Request.DestinationBasePath.
// A Job performs exactly one attempt and must not be run twice.
type Job struct {
	Request types.DownloadRequest
	Runtime *types.RuntimeConfig
	RunID   string           // Generated when empty
	Events  chan<- any       // Optional; see events.Send
	Clock   func() time.Time // Defaults to time.Now

	phase Phase
	err   error
}

// NewJob creates a job with a fresh run ID
func NewJob(req types.DownloadRequest, runtime *types.RuntimeConfig, eventsCh chan<- any) *Job {
	return &Job{
		Request: req,
		Runtime: runtime,
		RunID:   uuid.New().String(),
		Events:  eventsCh,
	}
}

// Phase returns the current state
func (j *Job) Phase() Phase {
	return j.phase
}

// Err returns the failure of a run that ended in PhaseFailed
func (j *Job) Err() error {
	return j.err
}

func (j *Job) now() time.Time {
	if j.Clock != nil {
		return j.Clock()
	}
	return time.Now()
}

func (j *Job) setPhase(next Phase) {
	prev := j.phase
	if !prev.CanTransition(next) {
		logging.Errorf("Invalid state transition %s -> %s", prev, next)
		return
	}
	j.phase = next
	logging.L().Debug(fmt.Sprintf("State: %s -> %s", prev, next))
	events.Send(j.Events, events.PhaseChangedMsg{DownloadID: j.RunID, From: prev.String(), To: next.String()})
}

// Run executes the job and returns its outcome. Failures never escape as
// errors; they are described by the result and by Err.
func (j *Job) Run(ctx context.Context) types.DownloadResult {
	if j.RunID == "" {
		j.RunID = uuid.New().String()
	}
	start := j.now()
	res := types.DownloadResult{RunID: j.RunID, URL: j.Request.SourceURL}

	destPath, err := utils.DestinationPath(j.Request.SourceURL, j.Request.DestinationBasePath)
	if err != nil {
		return j.fail(res, start, &FilesystemError{Op: "resolve", Path: j.Request.DestinationBasePath, Err: err})
	}
	destDir := filepath.Dir(destPath)
	res.DestinationDirectory = destDir

	logging.Infof("Destination directory: %s", destDir)
	logging.Infof("Destination file: %s", destPath)

	// A destination directory that cannot be used ends the run as a transfer failure
	info, statErr := os.Stat(destDir)
	switch {
	case statErr != nil:
		if err := os.MkdirAll(destDir, 0755); err != nil {
			res.DestinationDirectory = ""
			return j.fail(res, start, &TransferError{Path: destPath, Err: &FilesystemError{Op: "mkdir", Path: destDir, Err: err}})
		}
		logging.Info("Destination directory created.")
	case !info.IsDir():
		res.DestinationDirectory = ""
		notDir := &fs.PathError{Op: "mkdir", Path: destDir, Err: syscall.ENOTDIR}
		return j.fail(res, start, &TransferError{Path: destPath, Err: &FilesystemError{Op: "mkdir", Path: destDir, Err: notDir}})
	}

	j.setPhase(PhaseConnecting)
	transferStart := j.now()

	resp, err := single.NewDownloader(j.Runtime).Open(ctx, j.Request.SourceURL)
	if err != nil {
		return j.fail(res, start, &ConnectError{URL: j.Request.SourceURL, Err: err})
	}
	defer func() { _ = resp.Body.Close() }()

	logging.Infof("Connection successful. Content-Length: %d Bytes", resp.ContentLength)
	if resp.Filename != "" {
		logging.Infof("Server file name: %s", resp.Filename)
	}
	if resp.ContentType != "" {
		logging.Infof("Content-Type: %s", resp.ContentType)
	}

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return j.fail(res, start, &FilesystemError{Op: "create", Path: destPath, Err: err})
	}

	state := types.NewProgressState(j.RunID, resp.ContentLength)
	state.StartTime = transferStart

	events.Send(j.Events, events.DownloadStartedMsg{
		DownloadID: j.RunID,
		URL:        j.Request.SourceURL,
		Filename:   filepath.Base(destPath),
		Total:      state.TotalSize,
		DestPath:   destPath,
		State:      state,
	})
	j.setPhase(PhaseStreaming)

	written, copyErr := single.Copy(ctx, resp.Body, out, state, j.reporter(), single.CopyOptions{
		BufferSize:        j.Runtime.GetBufferSize(),
		ProgressInterval:  j.Runtime.GetProgressInterval(),
		MinReportInterval: j.Runtime.GetMinReportInterval(),
		Now:               j.now,
	})
	closeErr := out.Close()
	if copyErr != nil {
		return j.fail(res, start, &TransferError{Path: destPath, Written: written, Err: copyErr})
	}
	if closeErr != nil {
		return j.fail(res, start, &TransferError{Path: destPath, Written: written, Err: closeErr})
	}
	transferElapsed := j.now().Sub(transferStart)

	info, err = os.Stat(destPath)
	if err != nil {
		return j.fail(res, start, &FilesystemError{Op: "stat", Path: destPath, Err: err})
	}

	res.Success = true
	res.DownloadedFile = destPath
	res.FileSize = info.Size()
	res.AverageSpeedMBps = types.AverageSpeedMBps(res.FileSize, transferElapsed)
	res.DurationSeconds = j.now().Sub(start).Seconds()

	logging.Infof("Download completed: %s, Size: %d Bytes, Speed: %.2f MB/s", destPath, res.FileSize, res.AverageSpeedMBps)
	logFileType(destPath)

	j.setPhase(PhaseCompleted)
	events.Send(j.Events, events.DownloadCompleteMsg{
		DownloadID: j.RunID,
		Filename:   destPath,
		Elapsed:    transferElapsed,
		Total:      res.FileSize,
		SpeedMBps:  res.AverageSpeedMBps,
	})
	return res
}

// reporter logs every emission that survives throttling and forwards it to observers
func (j *Job) reporter() single.Reporter {
	return single.ReporterFunc(func(s progress.Snapshot, elapsed time.Duration, forced bool) {
		logging.Info(s.LogLine())
		events.Send(j.Events, events.ProgressMsg{
			DownloadID: j.RunID,
			Snapshot:   s,
			Elapsed:    elapsed,
			Forced:     forced,
		})
	})
}

func (j *Job) fail(res types.DownloadResult, start time.Time, err error) types.DownloadResult {
	logging.Errorf("Error while downloading: %s", err)

	j.err = err
	res.Success = false
	res.ErrorMessage = err.Error()
	res.DownloadedFile = ""
	res.FileSize = 0
	res.AverageSpeedMBps = 0
	res.DurationSeconds = j.now().Sub(start).Seconds()

	j.setPhase(PhaseFailed)
	events.Send(j.Events, events.DownloadErrorMsg{DownloadID: j.RunID, Err: err})
	return res
}

func logFileType(path string) {
	kind, err := filetype.MatchFile(path)
	if err != nil || kind == filetype.Unknown {
		return
	}
	logging.Infof("Detected file type: %s (.%s)", kind.MIME.Value, kind.Extension)
}
