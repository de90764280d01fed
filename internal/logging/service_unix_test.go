//go:build unix

package logging

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ShutdownHonorsDeadline(t *testing.T) {
	// Opening a FIFO for writing blocks until a reader shows up, which
	// stalls the sink on its first entry.
	path := filepath.Join(t.TempDir(), "stalled.txt")
	require.NoError(t, syscall.Mkfifo(path, 0644))

	require.NoError(t, Init(path, Options{Level: "info"}))
	Info("queued behind the stalled entry")

	// Release the sink afterwards: a read-write handle never blocks on open
	// and keeps the FIFO readable while the queued lines drain into it.
	t.Cleanup(func() {
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return
		}
		time.Sleep(200 * time.Millisecond)
		_ = f.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()
	err := Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 5*time.Second)
}
