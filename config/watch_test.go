package config

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherSkipsOnStatError(t *testing.T) {
	orig := readFileInfo
	defer func() { readFileInfo = orig }()
	readFileInfo = func(string) (interface{ ModTime() time.Time }, error) {
		return nil, errors.New("boom")
	}
	w := Watcher{Paths: []string{"noop"}, Interval: 10 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately
	if err := w.Start(ctx, nil); err == nil {
		t.Fatalf("expected context cancellation")
	}
}

func TestWatcherTriggersOnChange(t *testing.T) {
	now := time.Now()
	orig := readFileInfo
	defer func() { readFileInfo = orig }()
	var tick int32
	readFileInfo = func(string) (interface{ ModTime() time.Time }, error) {
		if atomic.AddInt32(&tick, 1) == 1 {
			return fakeInfo{mod: now}, nil
		}
		return fakeInfo{mod: now.Add(time.Second)}, nil
	}

	w := Watcher{Paths: []string{"quotes.csv"}, Interval: 5 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan string, 4)
	go func() {
		_ = w.Start(ctx, func(p string) { ch <- p })
	}()
	select {
	case p := <-ch:
		if p != "quotes.csv" {
			t.Fatalf("unexpected path %q", p)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("expected update callback")
	}
}

func TestWatcherIgnoresUnchangedFiles(t *testing.T) {
	now := time.Now()
	orig := readFileInfo
	defer func() { readFileInfo = orig }()
	readFileInfo = func(string) (interface{ ModTime() time.Time }, error) {
		return fakeInfo{mod: now}, nil
	}

	w := Watcher{Paths: []string{"a.csv", "b.csv"}, Interval: 2 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	var calls int32
	_ = w.Start(ctx, func(string) { atomic.AddInt32(&calls, 1) })
	if calls != 0 {
		t.Fatalf("expected no callbacks, got %d", calls)
	}
}

type fakeInfo struct{ mod time.Time }

func (f fakeInfo) ModTime() time.Time { return f.mod }
