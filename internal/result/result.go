// Package result persists the machine-readable outcome of a run.
package result

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"github.com/solvia-downloader/solvia/internal/engine/types"
)

// FileName is the name of the result file inside the target directory
const FileName = "JobResult.json"

// lockTimeout bounds how long a writer waits for another job sharing the directory
const lockTimeout = 30 * time.Second

// JobResult is the on-disk schema. Field order is part of the format.
type JobResult struct {
	Success             bool        `json:"Success"`
	ErrorMessage        string      `json:"ErrorMessage"`
	DownloadedFile      string      `json:"DownloadedFile"`
	DownloadedSizeBytes int64       `json:"DownloadedSizeBytes"`
	DurationSeconds     json.Number `json:"DurationSeconds"`
	AverageSpeedMBps    json.Number `json:"AverageSpeedMBps"`
}

// FromDownloadResult converts a run outcome to its on-disk form. Duration uses
// the shortest exact decimal; speed is rounded to two fractional digits.
func FromDownloadResult(r types.DownloadResult) JobResult {
	return JobResult{
		Success:             r.Success,
		ErrorMessage:        r.ErrorMessage,
		DownloadedFile:      r.DownloadedFile,
		DownloadedSizeBytes: r.FileSize,
		DurationSeconds:     json.Number(strconv.FormatFloat(r.DurationSeconds, 'f', -1, 64)),
		AverageSpeedMBps:    json.Number(strconv.FormatFloat(r.AverageSpeedMBps, 'f', 2, 64)),
	}
}

// Duration returns DurationSeconds as a float
func (j JobResult) Duration() (float64, error) {
	return j.DurationSeconds.Float64()
}

// Speed returns AverageSpeedMBps as a float
func (j JobResult) Speed() (float64, error) {
	return j.AverageSpeedMBps.Float64()
}

// Marshal encodes j with two-space indentation. Only the escapes JSON
// requires are applied; HTML characters are left as is.
func Marshal(j JobResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(j); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores r as dir/JobResult.json, replacing any previous file. dir is
// created if missing. Writers sharing dir are serialized with a lock file.
func Write(ctx context.Context, dir string, r types.DownloadResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create result directory: %w", err)
	}

	data, err := Marshal(FromDownloadResult(r))
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}

	path := filepath.Join(dir, FileName)

	lock := flock.New(path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return "", fmt.Errorf("failed to lock result file: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("failed to lock result file: %s", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to write result: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Chmod(0644)
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write result: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write result: %w", err)
	}
	return path, nil
}

// Read parses a result file written by Write
func Read(path string) (JobResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return JobResult{}, err
	}
	var j JobResult
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&j); err != nil {
		return JobResult{}, fmt.Errorf("invalid result file %s: %w", path, err)
	}
	return j, nil
}
