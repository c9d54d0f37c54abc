package plotter

// LinearMapper 把数据坐标（秒）线性映射到屏幕坐标。
// 跟随图直接复用参考图的 mapper 对象。
type LinearMapper struct {
	Range      *TimeRange
	ScreenLow  float64
	ScreenHigh float64
}

// NewLinearMapper 创建映射到 [0, 1] 的 mapper。
func NewLinearMapper(r *TimeRange) *LinearMapper {
	return &LinearMapper{Range: r, ScreenLow: 0, ScreenHigh: 1}
}

// SetScreen 更新屏幕端点（像素）。
func (m *LinearMapper) SetScreen(low, high float64) {
	m.ScreenLow, m.ScreenHigh = low, high
}

// Map 数据坐标 → 屏幕坐标。
func (m *LinearMapper) Map(x float64) float64 {
	lo, hi := m.Range.Bounds()
	return m.ScreenLow + (x-lo)/(hi-lo)*(m.ScreenHigh-m.ScreenLow)
}

// Unmap 屏幕坐标 → 数据坐标。
func (m *LinearMapper) Unmap(px float64) float64 {
	lo, hi := m.Range.Bounds()
	if m.ScreenHigh == m.ScreenLow {
		return lo
	}
	return lo + (px-m.ScreenLow)/(m.ScreenHigh-m.ScreenLow)*(hi-lo)
}

// Normalize 返回 x 在 [min, max] 中的比例位置，签名与 gonum plot.Normalizer 一致。
func (m *LinearMapper) Normalize(min, max, x float64) float64 {
	if max == min {
		return 0
	}
	return (x - min) / (max - min)
}
