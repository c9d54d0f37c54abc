package plotter

import (
	"errors"
	"math"
	"sync"
)

var ErrInvalidRange = errors.New("invalid time range")

// minSpan 单点数据时可见窗口的最小宽度（秒）。
const minSpan = 1.0

// TimeRange 是横轴（时间）的可见窗口。参考图与所有跟随图持有同一个 *TimeRange，
// 任一图上的平移/缩放对全部图同时生效。
type TimeRange struct {
	mu sync.RWMutex

	low, high         float64
	dataLow, dataHigh float64
	hasData           bool
	auto              bool
}

// NewTimeRange 返回自动跟随数据范围的空窗口。
func NewTimeRange() *TimeRange {
	return &TimeRange{auto: true}
}

// Include 把 [lo, hi] 并入数据范围；自动模式下可见窗口随之扩展。
func (r *TimeRange) Include(lo, hi float64) {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasData {
		r.dataLow, r.dataHigh = lo, hi
		r.hasData = true
	} else {
		r.dataLow = math.Min(r.dataLow, lo)
		r.dataHigh = math.Max(r.dataHigh, hi)
	}
	if r.auto {
		r.fitLocked()
	}
}

func (r *TimeRange) fitLocked() {
	if !r.hasData {
		r.low, r.high = 0, minSpan
		return
	}
	r.low, r.high = r.dataLow, r.dataHigh
	if r.high-r.low <= 0 {
		r.low -= minSpan / 2
		r.high += minSpan / 2
	}
}

// Bounds 返回当前可见窗口。
func (r *TimeRange) Bounds() (low, high float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.auto && !r.hasData {
		return 0, minSpan
	}
	return r.low, r.high
}

// Auto 表示窗口仍在跟随数据范围。
func (r *TimeRange) Auto() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.auto
}

// Set 手动设置可见窗口并退出自动模式。
func (r *TimeRange) Set(low, high float64) error {
	if math.IsNaN(low) || math.IsNaN(high) || math.IsInf(low, 0) || math.IsInf(high, 0) || !(low < high) {
		return ErrInvalidRange
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.low, r.high = low, high
	r.auto = false
	return nil
}

// Pan 整体平移 delta 秒。
func (r *TimeRange) Pan(delta float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.auto {
		r.fitLocked()
	}
	r.low += delta
	r.high += delta
	r.auto = false
}

// Zoom 以 center 为中心缩放，factor > 1 放大（窗口变窄）。
func (r *TimeRange) Zoom(factor, center float64) error {
	if !(factor > 0) || math.IsInf(factor, 0) || math.IsNaN(center) {
		return ErrInvalidRange
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.auto {
		r.fitLocked()
	}
	r.low = center - (center-r.low)/factor
	r.high = center + (r.high-center)/factor
	r.auto = false
	return nil
}

// Reset 回到自动模式，窗口重新贴合数据范围。
func (r *TimeRange) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auto = true
	r.fitLocked()
}
