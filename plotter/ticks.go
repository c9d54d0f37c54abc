package plotter

import (
	"math"
	"time"
)

// Tick 是横轴上的一个刻度。
type Tick struct {
	Value float64
	Label string
}

// TickScheme 描述日历刻度方案，所有联动图共用同一方案。
type TickScheme struct {
	MaxTicks int
	Location *time.Location
}

// DefaultTickScheme UTC、最多 8 个主刻度。
func DefaultTickScheme() TickScheme {
	return TickScheme{MaxTicks: 8, Location: time.UTC}
}

type tickStep struct {
	seconds float64 // 固定步长；按月/年步进时为 0
	months  int
	layout  string
}

var tickSteps = []tickStep{
	{seconds: 1e-6, layout: "15:04:05.000000"},
	{seconds: 5e-6, layout: "15:04:05.000000"},
	{seconds: 1e-5, layout: "15:04:05.000000"},
	{seconds: 5e-5, layout: "15:04:05.000000"},
	{seconds: 1e-4, layout: "15:04:05.0000"},
	{seconds: 5e-4, layout: "15:04:05.0000"},
	{seconds: 1e-3, layout: "15:04:05.000"},
	{seconds: 5e-3, layout: "15:04:05.000"},
	{seconds: 1e-2, layout: "15:04:05.00"},
	{seconds: 5e-2, layout: "15:04:05.00"},
	{seconds: 0.1, layout: "15:04:05.0"},
	{seconds: 0.25, layout: "15:04:05.00"},
	{seconds: 0.5, layout: "15:04:05.0"},
	{seconds: 1, layout: "15:04:05"},
	{seconds: 2, layout: "15:04:05"},
	{seconds: 5, layout: "15:04:05"},
	{seconds: 10, layout: "15:04:05"},
	{seconds: 15, layout: "15:04:05"},
	{seconds: 30, layout: "15:04:05"},
	{seconds: 60, layout: "15:04"},
	{seconds: 120, layout: "15:04"},
	{seconds: 300, layout: "15:04"},
	{seconds: 600, layout: "15:04"},
	{seconds: 900, layout: "15:04"},
	{seconds: 1800, layout: "15:04"},
	{seconds: 3600, layout: "Jan 2 15:04"},
	{seconds: 2 * 3600, layout: "Jan 2 15:04"},
	{seconds: 3 * 3600, layout: "Jan 2 15:04"},
	{seconds: 6 * 3600, layout: "Jan 2 15:04"},
	{seconds: 12 * 3600, layout: "Jan 2 15:04"},
	{seconds: 86400, layout: "Jan 2"},
	{seconds: 2 * 86400, layout: "Jan 2"},
	{seconds: 7 * 86400, layout: "Jan 2"},
	{months: 1, layout: "Jan 2006"},
	{months: 3, layout: "Jan 2006"},
	{months: 6, layout: "Jan 2006"},
	{months: 12, layout: "2006"},
	{months: 24, layout: "2006"},
	{months: 60, layout: "2006"},
	{months: 120, layout: "2006"},
}

// CalendarTicker 按日历步长生成刻度：亚毫秒到年，标签格式随步长变化。
// 每张图持有自己的实例，但使用相同的 TickScheme。
type CalendarTicker struct {
	Scheme TickScheme
}

// NewCalendarTicker 用给定方案创建刻度生成器。
func NewCalendarTicker(scheme TickScheme) *CalendarTicker {
	if scheme.MaxTicks <= 0 {
		scheme.MaxTicks = DefaultTickScheme().MaxTicks
	}
	if scheme.Location == nil {
		scheme.Location = time.UTC
	}
	return &CalendarTicker{Scheme: scheme}
}

// Ticks 返回 [min, max]（epoch 秒）内的刻度。
func (c *CalendarTicker) Ticks(min, max float64) []Tick {
	if !(max > min) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil
	}
	step := c.pickStep(max - min)
	if step.months > 0 {
		return c.monthTicks(min, max, step)
	}
	offset := c.ZoneOffset(min)
	first := math.Ceil((min+offset)/step.seconds)*step.seconds - offset
	var ticks []Tick
	for i := 0; ; i++ {
		v := first + float64(i)*step.seconds
		if v > max {
			break
		}
		ticks = append(ticks, Tick{Value: v, Label: c.label(v, step.layout)})
	}
	return ticks
}

func (c *CalendarTicker) pickStep(span float64) tickStep {
	for _, s := range tickSteps {
		width := s.seconds
		if s.months > 0 {
			width = float64(s.months) * 30 * 86400
		}
		if span/width <= float64(c.Scheme.MaxTicks) {
			return s
		}
	}
	return tickSteps[len(tickSteps)-1]
}

// ZoneOffset 返回 sec 时刻方案时区相对 UTC 的偏移（秒），用于把刻度对齐到本地时间。
func (c *CalendarTicker) ZoneOffset(sec float64) float64 {
	_, off := toTime(sec).In(c.Scheme.Location).Zone()
	return float64(off)
}

func (c *CalendarTicker) monthTicks(min, max float64, step tickStep) []Tick {
	loc := c.Scheme.Location
	start := toTime(min).In(loc)
	month := int(start.Month()) - 1
	month -= month % step.months
	t := time.Date(start.Year(), time.Month(month+1), 1, 0, 0, 0, 0, loc)
	if step.months >= 12 {
		year := start.Year() - start.Year()%(step.months/12)
		t = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	}
	var ticks []Tick
	for ; ; t = t.AddDate(0, step.months, 0) {
		v := fromTime(t)
		if v > max {
			break
		}
		if v >= min {
			ticks = append(ticks, Tick{Value: v, Label: t.Format(step.layout)})
		}
	}
	return ticks
}

func (c *CalendarTicker) label(v float64, layout string) string {
	return toTime(v).In(c.Scheme.Location).Format(layout)
}

func toTime(sec float64) time.Time {
	whole := math.Floor(sec)
	// float64 秒在当前纪元只有约 0.2µs 精度，按微秒取整避免标签被截断到上一格。
	usec := math.Round((sec - whole) * 1e6)
	return time.Unix(int64(whole), int64(usec)*1e3)
}

func fromTime(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())*1e-9
}
