package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Monitor Prometheus监控指标收集器
type Monitor struct {
	registry *prometheus.Registry

	// 加载指标
	rowsLoaded         *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	loadLatency        *prometheus.HistogramVec

	// 组图指标
	chartsComposed prometheus.Counter
	seriesDrawn    *prometheus.CounterVec
	composeErrors  prometheus.Counter
	composeLatency prometheus.Histogram
	symbols        prometheus.Gauge

	// 输出指标
	renders       *prometheus.CounterVec
	renderErrors  *prometheus.CounterVec
	renderLatency *prometheus.HistogramVec

	// 监听模式
	reloads prometheus.Counter

	mu sync.Mutex
}

// Config 监控配置
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace: "microplot",
		Subsystem: "",
	}
}

// New 创建新的Monitor实例
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()

	// 创建factory
	factory := promauto.With(reg)

	latencyBuckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

	m := &Monitor{
		registry: reg,

		rowsLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rows_loaded_total",
				Help:      "按类别统计的已加载行数",
			},
			[]string{"category"},
		),
		validationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_failures_total",
				Help:      "按类别统计的校验失败次数",
			},
			[]string{"category"},
		),
		loadLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "load_seconds",
				Help:      "单个输入文件加载耗时（秒）",
				Buckets:   latencyBuckets,
			},
			[]string{"category"},
		),

		chartsComposed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "charts_composed_total",
			Help:      "已构建的子图总数",
		}),
		seriesDrawn: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "series_drawn_total",
				Help:      "按数据流统计的绘制序列数",
			},
			[]string{"stream"},
		),
		composeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "compose_errors_total",
			Help:      "组图失败次数",
		}),
		composeLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "compose_seconds",
			Help:      "一次组图耗时（秒）",
			Buckets:   latencyBuckets,
		}),
		symbols: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "symbols",
			Help:      "最近一次组图的品种数",
		}),

		renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "renders_total",
				Help:      "按格式统计的输出次数",
			},
			[]string{"format"},
		),
		renderErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "render_errors_total",
				Help:      "按格式统计的输出失败次数",
			},
			[]string{"format"},
		),
		renderLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "render_seconds",
				Help:      "输出耗时（秒）",
				Buckets:   latencyBuckets,
			},
			[]string{"format"},
		),

		reloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "reloads_total",
			Help:      "监听模式下的重绘次数",
		}),
	}

	return m
}

// 加载相关方法
func (m *Monitor) RecordRowsLoaded(category string, rows int) {
	m.rowsLoaded.WithLabelValues(category).Add(float64(rows))
}

func (m *Monitor) RecordValidationFailure(category string) {
	m.validationFailures.WithLabelValues(category).Inc()
}

func (m *Monitor) RecordLoadLatency(category string, elapsed time.Duration) {
	m.loadLatency.WithLabelValues(category).Observe(elapsed.Seconds())
}

// ObserveChart 实现 plotter.Observer。
func (m *Monitor) ObserveChart(symbol string, series []string) {
	m.chartsComposed.Inc()
	for _, s := range series {
		m.seriesDrawn.WithLabelValues(s).Inc()
	}
}

// ObserveCompose 实现 plotter.Observer。
func (m *Monitor) ObserveCompose(elapsed time.Duration, charts int, err error) {
	m.composeLatency.Observe(elapsed.Seconds())
	if err != nil {
		m.composeErrors.Inc()
		return
	}
	m.symbols.Set(float64(charts))
}

// 输出相关方法
func (m *Monitor) RecordRender(format string, elapsed time.Duration, err error) {
	if err != nil {
		m.renderErrors.WithLabelValues(format).Inc()
		return
	}
	m.renders.WithLabelValues(format).Inc()
	m.renderLatency.WithLabelValues(format).Observe(elapsed.Seconds())
}

func (m *Monitor) RecordReload() {
	m.reloads.Inc()
}

// WriteTextfile 以 node_exporter textfile 格式写出全部指标。
func (m *Monitor) WriteTextfile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Registry 返回prometheus registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}
