package single

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/solvia-downloader/solvia/internal/engine/progress"
	"github.com/solvia-downloader/solvia/internal/engine/types"
)

// Reporter receives progress snapshots. forced is true for ticker and final
// emissions, false for the per-chunk ones.
type Reporter interface {
	Report(s progress.Snapshot, elapsed time.Duration, forced bool)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(s progress.Snapshot, elapsed time.Duration, forced bool)

func (f ReporterFunc) Report(s progress.Snapshot, elapsed time.Duration, forced bool) {
	f(s, elapsed, forced)
}

// CopyOptions tunes the copy loop. Zero values use the package defaults.
type CopyOptions struct {
	BufferSize        int
	ProgressInterval  time.Duration
	MinReportInterval time.Duration
	Now               func() time.Time
}

func (o CopyOptions) withDefaults() CopyOptions {
	if o.BufferSize <= 0 {
		o.BufferSize = types.ChunkSize
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = types.ProgressInterval
	}
	if o.MinReportInterval < 0 {
		o.MinReportInterval = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// throttledReporter suppresses non-forced emissions that arrive within
// minInterval of the previous emission.
type throttledReporter struct {
	next        Reporter
	state       *types.ProgressState
	minInterval time.Duration
	now         func() time.Time

	mu       sync.Mutex
	lastEmit time.Time
}

func (t *throttledReporter) emit(forced bool) {
	now := t.now()

	t.mu.Lock()
	if !forced && !t.lastEmit.IsZero() && now.Sub(t.lastEmit) < t.minInterval {
		t.mu.Unlock()
		return
	}
	t.lastEmit = now
	elapsed := now.Sub(t.state.StartTime)
	// Snapshot under the lock so emissions stay ordered by byte count
	snap := progress.Compute(t.state.Downloaded.Load(), t.state.TotalSize, elapsed.Seconds())
	t.next.Report(snap, elapsed, forced)
	t.mu.Unlock()
}

// Copy streams body into dst in fixed-size chunks, writing each chunk before
// reading the next. state.Downloaded is advanced after every write. A ticker
// goroutine forces a progress emission every ProgressInterval for as long as
// the loop runs; it is stopped and joined before Copy returns, followed by one
// last forced emission of the final counter.
//
// Partial data already written is left in dst on error.
func Copy(ctx context.Context, body io.Reader, dst io.Writer, state *types.ProgressState, rep Reporter, opts CopyOptions) (int64, error) {
	opts = opts.withDefaults()
	if state == nil {
		state = types.NewProgressState("", -1)
	}
	if rep == nil {
		rep = ReporterFunc(func(progress.Snapshot, time.Duration, bool) {})
	}

	tr := &throttledReporter{
		next:        rep,
		state:       state,
		minInterval: opts.MinReportInterval,
		now:         opts.Now,
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(opts.ProgressInterval)
		defer ticker.Stop()

		tr.emit(true)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				tr.emit(true)
			}
		}
	}()

	written, err := copyLoop(ctx, body, dst, state, tr, opts.BufferSize)

	close(stop)
	wg.Wait()
	state.Done.Store(true)
	tr.emit(true)

	return written, err
}

func copyLoop(ctx context.Context, body io.Reader, dst io.Writer, state *types.ProgressState, tr *throttledReporter, bufSize int) (int64, error) {
	var written int64
	buf := make([]byte, bufSize)

	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, readErr := body.Read(buf)
		if nr > 0 {
			nw, writeErr := dst.Write(buf[0:nr])
			if nw > 0 {
				written += int64(nw)
				state.Downloaded.Add(int64(nw))
			}
			if writeErr != nil {
				return written, fmt.Errorf("write error: %w", writeErr)
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
			tr.emit(false)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			// A cancelled request surfaces as a read error on the body
			if ctxErr := ctx.Err(); ctxErr != nil {
				return written, fmt.Errorf("read error: %w", ctxErr)
			}
			return written, fmt.Errorf("read error: %w", readErr)
		}
	}
}
