package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvia-downloader/solvia/internal/engine/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, types.DownloadResult{
		RunID: "a", URL: "https://example.com/a.bin", Success: true,
		DownloadedFile: "/out/a.bin", FileSize: 1024, DurationSeconds: 1.5, AverageSpeedMBps: 0.01,
	}, base))
	require.NoError(t, s.Record(ctx, types.DownloadResult{
		RunID: "b", URL: "https://example.com/b.bin", ErrorMessage: "boom",
	}, base.Add(time.Minute)))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "b", entries[0].ID)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "boom", entries[0].ErrorMessage)

	assert.Equal(t, "a", entries[1].ID)
	assert.True(t, entries[1].Success)
	assert.EqualValues(t, 1024, entries[1].SizeBytes)
	assert.Equal(t, "/out/a.bin", entries[1].DownloadedFile)
	assert.InDelta(t, 1.5, entries[1].DurationSeconds, 1e-9)
	assert.True(t, entries[1].FinishedAt.Equal(base))
}

func TestStore_RecentOrdersSubSecond(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 5, 0, time.UTC)

	// .5s and .55s differ only in fraction width when trailing zeros are trimmed
	require.NoError(t, s.Record(ctx, types.DownloadResult{RunID: "early", URL: "u"}, base.Add(500*time.Millisecond)))
	require.NoError(t, s.Record(ctx, types.DownloadResult{RunID: "late", URL: "u"}, base.Add(550*time.Millisecond)))

	entries, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "late", entries[0].ID)
	assert.Equal(t, "early", entries[1].ID)
}

func TestStore_RecordReplacesSameRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Record(ctx, types.DownloadResult{RunID: "x", URL: "u"}, now))
	require.NoError(t, s.Record(ctx, types.DownloadResult{RunID: "x", URL: "u", Success: true, FileSize: 7}, now))

	st, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Runs: 1, Succeeded: 1, Bytes: 7}, st)
}

func TestStore_RecordRequiresRunID(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Record(context.Background(), types.DownloadResult{URL: "u"}, time.Now()))
}

func TestStore_SummaryEmpty(t *testing.T) {
	s := openTestStore(t)
	st, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, types.DownloadResult{RunID: "persist", URL: "u"}, time.Now()))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "persist", entries[0].ID)
}
