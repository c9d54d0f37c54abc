// Package app 组装配置、日志、监控、加载、组图与输出。
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microstructure-plotter/config"
	"microstructure-plotter/dataset"
	"microstructure-plotter/infrastructure/logger"
	"microstructure-plotter/infrastructure/monitor"
	"microstructure-plotter/ingest"
	"microstructure-plotter/internal/reload"
	"microstructure-plotter/plotter"
	"microstructure-plotter/render"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// App 依赖注入容器，一次构建，可多次 RunOnce（监听模式下每次变化重跑一次）。
type App struct {
	// 配置
	cfg config.AppConfig

	// 基础设施
	logger  *logger.Logger
	monitor *monitor.Monitor

	metrics *metricsFile

	// 监听模式下的服务
	services *services
}

// New 创建新的App实例，cfg 需已通过 config.Validate。
func New(cfg config.AppConfig) *App {
	return &App{cfg: cfg}
}

// Build 构建所有组件
func (a *App) Build() error {
	if err := a.buildInfrastructure(); err != nil {
		return fmt.Errorf("build infrastructure failed: %w", err)
	}
	a.logger.Debug("app built")
	return nil
}

func (a *App) buildInfrastructure() error {
	var err error
	a.logger, err = logger.New(a.cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger failed: %w", err)
	}
	a.monitor = monitor.New(monitor.DefaultConfig())
	a.metrics = &metricsFile{
		path:    a.cfg.Metrics.Textfile,
		monitor: a.monitor,
		logger:  a.logger,
	}
	a.services = newServices(a.metrics, a.logger)
	return nil
}

// Logger 返回日志器，Build 之前为 nil。
func (a *App) Logger() *logger.Logger { return a.logger }

// Monitor 返回指标收集器，Build 之前为 nil。
func (a *App) Monitor() *monitor.Monitor { return a.monitor }

// RunOnce 加载全部输入、组图并写出配置的输出文件。每次调用使用新的 Dataset。
func (a *App) RunOnce() (*plotter.Container, error) {
	runID := uuid.NewString()
	log := a.logger.WithFields(map[string]interface{}{"run_id": runID})

	ds := dataset.New()
	ds.StrictOrderFlags = a.cfg.Dataset.StrictOrderFlags
	if err := ingest.NewLoader(ingest.WithLogger(log), ingest.WithRecorder(a.monitor)).Load(a.cfg.Inputs, ds); err != nil {
		return nil, err
	}

	loc, err := a.cfg.Dataset.Location()
	if err != nil {
		return nil, fmt.Errorf("time zone: %w", err)
	}
	opts := plotter.Options{
		ShowLegend: a.cfg.Output.ShowLegend,
		TickScheme: plotter.TickScheme{MaxTicks: a.cfg.Dataset.MaxTicks, Location: loc},
	}
	composer := plotter.NewComposer(ds, opts,
		plotter.WithLogger(log.Logger),
		plotter.WithObserver(a.monitor),
	)
	container, err := composer.Compose()
	if err != nil {
		return nil, err
	}

	ropts := a.renderOptions()
	for _, path := range []string{a.cfg.Output.HTML, a.cfg.Output.Image} {
		if path == "" {
			continue
		}
		if err := a.write(log, path, container, ropts); err != nil {
			return container, err
		}
	}

	if err := a.metrics.flush(); err != nil {
		return container, err
	}
	return container, nil
}

func (a *App) write(log *logger.Logger, path string, c *plotter.Container, opts render.Options) error {
	format, err := render.FormatFromPath(path)
	if err != nil {
		return err
	}
	start := time.Now()
	err = render.WriteFile(path, c, opts)
	a.monitor.RecordRender(format.String(), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.LogRender(format.String(), path, len(c.Charts), map[string]interface{}{
		"symbols": c.Symbols(),
		"elapsed": time.Since(start).String(),
	})
	return nil
}

func (a *App) renderOptions() render.Options {
	out := a.cfg.Output
	opts := render.DefaultOptions()
	if out.Title != "" {
		opts.HTML.Title = out.Title
	}
	opts.HTML.Width = out.Width
	if out.ChartHeight > 0 {
		opts.HTML.ChartHeight = out.ChartHeight
		opts.Image.ChartHeight = out.ChartHeight
	}
	if out.PlotlyURL != "" {
		opts.HTML.PlotlyURL = out.PlotlyURL
	}
	if out.Width > 0 {
		opts.Image.Width = out.Width
	}
	return opts
}

// Watch 先完成一次输出，再在输入文件变化时重跑，直到 ctx 结束。
// 监听期间的失败只记录日志，不退出。
func (a *App) Watch(ctx context.Context) error {
	if _, err := a.RunOnce(); err != nil {
		return err
	}

	wcfg := reload.FromAppConfig(a.cfg.Watch)
	wcfg.Enabled = true
	reloader, err := reload.New(a.cfg.Inputs.Paths(), wcfg, a.logger)
	if err != nil {
		return fmt.Errorf("create reloader: %w", err)
	}
	reloader.SetHandler(func() error {
		a.monitor.RecordReload()
		_, err := a.RunOnce()
		return err
	})

	a.services.add("reloader", reloader)
	if err := a.services.start(ctx); err != nil {
		return fmt.Errorf("start failed: %w", err)
	}
	a.logger.Info("watching inputs", zap.Strings("paths", reloader.Paths()))

	<-ctx.Done()
	if err := a.services.stop(); err != nil {
		a.logger.LogError(err, map[string]interface{}{"action": "stop"})
		return err
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// HealthCheck 检查监听服务与指标输出
func (a *App) HealthCheck() error {
	if a.services == nil {
		return fmt.Errorf("app not built")
	}
	return a.services.health()
}

// Close 刷新日志
func (a *App) Close() error {
	if a.logger != nil {
		_ = a.logger.Close()
	}
	return nil
}
