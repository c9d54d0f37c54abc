// Package plotter 把 Dataset 组装成按品种拆分、横轴联动的一组子图。
package plotter

import (
	"errors"
	"fmt"
	"time"

	"microstructure-plotter/dataset"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNoSymbols = errors.New("dataset has no symbols")

// CompositionError 某个品种的子图构建失败，整次组图中止。
type CompositionError struct {
	Symbol string
	Err    error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("compose chart for symbol %s: %v", e.Symbol, e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }

// Observer 接收组图过程的统计，monitor 实现该接口。
type Observer interface {
	ObserveChart(symbol string, series []string)
	ObserveCompose(elapsed time.Duration, charts int, err error)
}

// Options 组图参数。
type Options struct {
	// ShowLegend 默认关闭，序列较多时图例会遮挡数据。
	ShowLegend bool
	TickScheme TickScheme
}

// DefaultOptions 返回默认参数。
func DefaultOptions() Options {
	return Options{TickScheme: DefaultTickScheme()}
}

// Option 可选依赖。
type Option func(*Composer)

// WithLogger 注入 zap logger。
func WithLogger(l *zap.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver 注入统计观察者。
func WithObserver(o Observer) Option {
	return func(c *Composer) { c.observer = o }
}

// Composer 每次 Compose 独立构建一组联动子图，不在调用之间复用状态。
type Composer struct {
	data     *dataset.Dataset
	opts     Options
	logger   *zap.Logger
	observer Observer
}

// NewComposer 创建组图器。组图期间 ds 不得被修改。
func NewComposer(ds *dataset.Dataset, opts Options, options ...Option) *Composer {
	c := &Composer{
		data:   ds,
		opts:   opts,
		logger: zap.NewNop(),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Compose 为每个品种（字典序）构建子图并联动横轴。任一品种失败则返回
// *CompositionError，不返回部分结果。
func (c *Composer) Compose() (container *Container, err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			n := 0
			if container != nil {
				n = len(container.Charts)
			}
			c.observer.ObserveCompose(time.Since(start), n, err)
		}
	}()

	symbols := c.data.Symbols()
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}

	l := &linker{scheme: c.opts.TickScheme}
	charts := make([]*Chart, 0, len(symbols))
	for _, symbol := range symbols {
		slice, err := BuildSlice(c.data, symbol)
		if err != nil {
			return nil, &CompositionError{Symbol: symbol, Err: err}
		}
		chart, err := c.newChart(slice)
		if err != nil {
			return nil, &CompositionError{Symbol: symbol, Err: err}
		}
		l.link(chart)
		charts = append(charts, chart)

		names := make([]string, len(chart.Series))
		for i, s := range chart.Series {
			names[i] = s.Name
		}
		c.logger.Debug("chart composed",
			zap.String("symbol", symbol),
			zap.Strings("series", names),
			zap.Bool("reference", l.ref == chart),
		)
		if c.observer != nil {
			c.observer.ObserveChart(symbol, names)
		}
	}

	container = &Container{ID: uuid.NewString(), Charts: charts}
	lo, hi := l.ref.IndexRange.Bounds()
	c.logger.Info("charts linked",
		zap.Int("charts", len(charts)),
		zap.Float64("range_low", lo),
		zap.Float64("range_high", hi),
	)
	return container, nil
}

// newChart 按 StreamKind 顺序绘制切片中存在的流。
func (c *Composer) newChart(s *Slice) (*Chart, error) {
	chart := &Chart{
		ID:         uuid.NewString(),
		Symbol:     s.Symbol,
		Title:      fmt.Sprintf("Symbol: %s", s.Symbol),
		ShowLegend: c.opts.ShowLegend,
		Tools:      []Tool{ToolPan, ToolBoxZoom},
		LeftAxis:   &Axis{Orientation: Left},
		HGrid:      true,
	}
	for _, k := range s.Kinds() {
		st := s.Stream(k)
		if len(st.X) != len(st.Y) {
			return nil, fmt.Errorf("%s: %d timestamps for %d values", k, len(st.X), len(st.Y))
		}
		chart.Series = append(chart.Series, Series{
			Kind:  k,
			Name:  k.String(),
			Style: k.Style(),
			X:     st.X,
			Y:     st.Y,
		})
	}
	return chart, nil
}

// linker 记录参考图：第一张图建立自己的 mapper、时间窗口与底轴，
// 之后的图共享参考图的 mapper 与时间窗口，底轴各自持有同方案的刻度生成器。
type linker struct {
	scheme TickScheme
	ref    *Chart
}

func (l *linker) link(chart *Chart) {
	if l.ref == nil {
		chart.IndexRange = NewTimeRange()
		chart.IndexMapper = NewLinearMapper(chart.IndexRange)
		chart.BottomAxis = &Axis{
			Orientation: Bottom,
			Mapper:      chart.IndexMapper,
			Ticker:      NewCalendarTicker(l.scheme),
		}
		l.ref = chart
	} else {
		chart.IndexRange = l.ref.IndexRange
		chart.IndexMapper = l.ref.IndexMapper
		chart.BottomAxis = &Axis{
			Orientation: Bottom,
			Mapper:      l.ref.IndexMapper,
			Ticker:      NewCalendarTicker(l.ref.BottomAxis.Ticker.Scheme),
		}
	}
	for i := range chart.Series {
		st := Stream{X: chart.Series[i].X}
		if lo, hi, ok := st.Extent(); ok {
			chart.IndexRange.Include(lo, hi)
		}
	}
}
