// Package reload 在输入文件变化后触发重绘。
package reload

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"microstructure-plotter/config"
	"microstructure-plotter/infrastructure/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Config 监听配置
type Config struct {
	Enabled      bool          // 是否启用
	Cooldown     time.Duration // 合并窗口：窗口内的多次变化只触发一次
	UsePolling   bool          // 使用 mtime 轮询代替 fsnotify
	PollInterval time.Duration // 轮询间隔
}

// DefaultConfig 默认监听配置
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		Cooldown:     500 * time.Millisecond,
		PollInterval: 2 * time.Second,
	}
}

// FromAppConfig 由应用配置构造。
func FromAppConfig(w config.WatchConfig) Config {
	return Config{
		Enabled:      w.Enabled,
		Cooldown:     w.Cooldown,
		UsePolling:   w.UsePolling,
		PollInterval: w.PollInterval,
	}
}

// Reloader 监听一组文件，变化后经过 Cooldown 合并再调用 handler。
// handler 在单个 goroutine 中串行执行。
type Reloader struct {
	config  Config
	paths   map[string]struct{}
	watcher *fsnotify.Watcher
	logger  *logger.Logger

	handler    func() error
	lastReload time.Time
	reloads    int
	mu         sync.RWMutex

	changes  chan string
	cancel   context.CancelFunc
	started  bool
	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// New 创建监听器。非轮询模式下创建 fsnotify watcher。
func New(paths []string, cfg Config, log *logger.Logger) (*Reloader, error) {
	if log == nil {
		log = logger.Nop()
	}
	r := &Reloader{
		config:   cfg,
		paths:    make(map[string]struct{}, len(paths)),
		logger:   log,
		changes:  make(chan string, 16),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		r.paths[abs] = struct{}{}
	}
	if !cfg.UsePolling {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create watcher: %w", err)
		}
		r.watcher = watcher
	}
	return r, nil
}

// SetHandler 设置重绘函数
func (r *Reloader) SetHandler(handler func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = handler
}

// Start 启动监听，立即返回。
func (r *Reloader) Start(ctx context.Context) error {
	if !r.config.Enabled {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	if r.watcher != nil {
		// 监听所在目录：编辑器常以 rename 方式保存文件，直接监听文件会丢失后续事件。
		dirs := make(map[string]struct{})
		for p := range r.paths {
			dirs[filepath.Dir(p)] = struct{}{}
		}
		for d := range dirs {
			if err := r.watcher.Add(d); err != nil {
				cancel()
				return fmt.Errorf("failed to watch %s: %w", d, err)
			}
		}
	} else {
		poller := config.Watcher{Paths: r.Paths(), Interval: r.config.PollInterval}
		go func() {
			_ = poller.Start(ctx, func(p string) {
				select {
				case r.changes <- p:
				default:
				}
			})
		}()
	}

	r.mu.Lock()
	r.started = true
	r.mu.Unlock()
	go r.watch(ctx)
	return nil
}

// Run 启动监听并阻塞到 ctx 结束。
func (r *Reloader) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	if err := r.Stop(); err != nil {
		return err
	}
	return ctx.Err()
}

// Stop 停止监听
func (r *Reloader) Stop() error {
	r.mu.RLock()
	started := r.started
	r.mu.RUnlock()

	if started {
		r.stopOnce.Do(func() { close(r.stopChan) })
		if r.cancel != nil {
			r.cancel()
		}
		select {
		case <-r.doneChan:
		case <-time.After(time.Second):
		}
		r.mu.Lock()
		r.started = false
		r.mu.Unlock()
	}
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

// Health 未启动时返回错误。
func (r *Reloader) Health() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.config.Enabled && !r.started {
		return fmt.Errorf("reloader not started")
	}
	return nil
}

// Paths 返回被监听的文件（绝对路径）。
func (r *Reloader) Paths() []string {
	out := make([]string, 0, len(r.paths))
	for p := range r.paths {
		out = append(out, p)
	}
	return out
}

func (r *Reloader) watch(ctx context.Context) {
	defer close(r.doneChan)

	var fsEvents <-chan fsnotify.Event
	var fsErrors <-chan error
	if r.watcher != nil {
		fsEvents, fsErrors = r.watcher.Events, r.watcher.Errors
	}

	var timer *time.Timer
	var fire <-chan time.Time
	trigger := func(path string) {
		r.logger.Debug("input changed", zap.String("path", path))
		if r.config.Cooldown <= 0 {
			r.reload()
			return
		}
		if timer == nil {
			timer = time.NewTimer(r.config.Cooldown)
		} else {
			timer.Reset(r.config.Cooldown)
		}
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case event, ok := <-fsEvents:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, watched := r.paths[filepath.Clean(event.Name)]; watched {
				trigger(event.Name)
			}
		case err, ok := <-fsErrors:
			if !ok {
				return
			}
			// 记录错误但继续监听
			r.logger.LogError(err, map[string]interface{}{"action": "watch"})
		case p := <-r.changes:
			trigger(p)
		case <-fire:
			fire = nil
			r.reload()
		}
	}
}

func (r *Reloader) reload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handler != nil {
		if err := r.handler(); err != nil {
			r.logger.LogError(err, map[string]interface{}{"action": "reload"})
			return
		}
	}
	r.lastReload = time.Now()
	r.reloads++
}

// LastReloadTime 最近一次成功重绘的时间
func (r *Reloader) LastReloadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastReload
}

// Reloads 成功重绘次数
func (r *Reloader) Reloads() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reloads
}
