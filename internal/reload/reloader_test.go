package reload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func waitFor(t *testing.T, cond func() bool, timeout time.Duration) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestReloaderCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	quotes := filepath.Join(dir, "quotes.csv")
	writeInput(t, quotes, "timestamp\n")

	r, err := New([]string{quotes}, Config{Enabled: true, Cooldown: 100 * time.Millisecond}, nil)
	require.NoError(t, err)
	var calls int32
	r.SetHandler(func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Start(ctx))
	defer r.Stop()
	assert.NoError(t, r.Health())

	for i := 0; i < 3; i++ {
		writeInput(t, quotes, "timestamp\n1\n")
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, 2*time.Second))
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, r.Reloads())
	assert.False(t, r.LastReloadTime().IsZero())
}

func TestReloaderIgnoresUnwatchedFiles(t *testing.T) {
	dir := t.TempDir()
	quotes := filepath.Join(dir, "quotes.csv")
	writeInput(t, quotes, "timestamp\n")

	r, err := New([]string{quotes}, Config{Enabled: true}, nil)
	require.NoError(t, err)
	var calls int32
	r.SetHandler(func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Start(ctx))
	defer r.Stop()

	writeInput(t, filepath.Join(dir, "notes.txt"), "hello")
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestReloaderHandlerErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	quotes := filepath.Join(dir, "quotes.csv")
	writeInput(t, quotes, "timestamp\n")

	r, err := New([]string{quotes}, Config{Enabled: true}, nil)
	require.NoError(t, err)
	var calls int32
	r.SetHandler(func() error {
		atomic.AddInt32(&calls, 1)
		return errors.New("bad csv")
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Start(ctx))
	defer r.Stop()

	writeInput(t, quotes, "a\n")
	require.True(t, waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, 2*time.Second))
	assert.Equal(t, 0, r.Reloads())
	assert.True(t, r.LastReloadTime().IsZero())
}

func TestReloaderPolling(t *testing.T) {
	dir := t.TempDir()
	quotes := filepath.Join(dir, "quotes.csv")
	writeInput(t, quotes, "timestamp\n")

	cfg := Config{Enabled: true, UsePolling: true, PollInterval: 10 * time.Millisecond}
	r, err := New([]string{quotes}, cfg, nil)
	require.NoError(t, err)
	var calls int32
	r.SetHandler(func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Start(ctx))
	defer r.Stop()

	// 等轮询器记录基线后再推进 mtime
	time.Sleep(30 * time.Millisecond)
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(quotes, future, future))
	assert.True(t, waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, 2*time.Second))
}

func TestReloaderDisabled(t *testing.T) {
	r, err := New([]string{"quotes.csv"}, Config{Enabled: false}, nil)
	require.NoError(t, err)
	require.NoError(t, r.Start(context.Background()))
	assert.NoError(t, r.Health())
	assert.NoError(t, r.Stop())
}

func TestReloaderRunReturnsOnCancel(t *testing.T) {
	dir := t.TempDir()
	quotes := filepath.Join(dir, "quotes.csv")
	writeInput(t, quotes, "timestamp\n")

	r, err := New([]string{quotes}, DefaultConfig(), nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Run(ctx), context.DeadlineExceeded)
}
