package config

import (
	"context"
	"os"
	"time"
)

// Watcher 轮询文件 mtime，变化时回调。fsnotify 不可用（如网络文件系统）时作为后备。
type Watcher struct {
	Paths    []string
	Interval time.Duration
}

// Start 阻塞轮询直到 ctx 结束；启动时记录基线，之后每个发生变化的文件回调一次。
func (w Watcher) Start(ctx context.Context, onChange func(path string)) error {
	if w.Interval <= 0 {
		w.Interval = 2 * time.Second
	}
	lastMod := make(map[string]time.Time, len(w.Paths))
	for _, p := range w.Paths {
		if info, err := readFileInfo(p); err == nil {
			lastMod[p] = info.ModTime()
		}
	}
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, p := range w.Paths {
				info, err := readFileInfo(p)
				if err != nil {
					continue
				}
				if info.ModTime().After(lastMod[p]) {
					lastMod[p] = info.ModTime()
					if onChange != nil {
						onChange(p)
					}
				}
			}
		}
	}
}

// readFileInfo is extracted for testing/mocking.
var readFileInfo = func(path string) (info interface{ ModTime() time.Time }, err error) {
	return os.Stat(path)
}
