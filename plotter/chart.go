package plotter

import "math"

// Orientation 坐标轴位置。
type Orientation int

const (
	Bottom Orientation = iota
	Left
)

// Tool 图上的交互工具。
type Tool int

const (
	ToolPan Tool = iota
	ToolBoxZoom
)

func (t Tool) String() string {
	if t == ToolBoxZoom {
		return "box_zoom"
	}
	return "pan"
}

// Axis 坐标轴。底部时间轴带 mapper 与日历刻度；左轴只有方向。
type Axis struct {
	Orientation Orientation
	Mapper      *LinearMapper
	Ticker      *CalendarTicker
}

// Series 已定型的一条绘制序列。
type Series struct {
	Kind  StreamKind
	Name  string
	Style Style
	X     []float64
	Y     []float64
}

// Chart 单个品种的子图。
type Chart struct {
	ID     string
	Symbol string
	Title  string
	Series []Series

	// IndexRange / IndexMapper 在联动后与参考图共享同一对象。
	IndexRange  *TimeRange
	IndexMapper *LinearMapper
	BottomAxis  *Axis
	LeftAxis    *Axis

	ShowLegend bool
	Tools      []Tool
	// HGrid 绘制水平虚线网格。
	HGrid bool
}

// VisibleRange 当前可见时间窗口。
func (c *Chart) VisibleRange() (low, high float64) {
	return c.IndexRange.Bounds()
}

// SetVisibleRange 设置时间窗口；联动图同步变化。
func (c *Chart) SetVisibleRange(low, high float64) error {
	return c.IndexRange.Set(low, high)
}

// Pan 平移时间窗口。
func (c *Chart) Pan(delta float64) { c.IndexRange.Pan(delta) }

// Zoom 缩放时间窗口。
func (c *Chart) Zoom(factor, center float64) error { return c.IndexRange.Zoom(factor, center) }

// LinkedTo 判断两图是否共享时间窗口。
func (c *Chart) LinkedTo(other *Chart) bool {
	return c.IndexRange != nil && c.IndexRange == other.IndexRange
}

// ValueBounds 返回全部序列 Y 的范围，忽略 NaN 与 ±Inf。
func (c *Chart) ValueBounds() (low, high float64, ok bool) {
	low, high = math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, y := range s.Y {
			if math.IsNaN(y) || math.IsInf(y, 0) {
				continue
			}
			low = math.Min(low, y)
			high = math.Max(high, y)
			ok = true
		}
	}
	return low, high, ok
}

// Container 自上而下排列的子图。
type Container struct {
	ID     string
	Charts []*Chart
}

// Reference 返回参考图（第一张），没有图时为 nil。
func (c *Container) Reference() *Chart {
	if len(c.Charts) == 0 {
		return nil
	}
	return c.Charts[0]
}

// Symbols 按显示顺序返回品种。
func (c *Container) Symbols() []string {
	out := make([]string, len(c.Charts))
	for i, ch := range c.Charts {
		out[i] = ch.Symbol
	}
	return out
}
