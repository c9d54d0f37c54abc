package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"time"

	"microstructure-plotter/plotter"
)

const defaultPlotlyURL = "https://cdn.plot.ly/plotly-2.27.0.min.js"

// HTMLOptions 交互式页面参数。
type HTMLOptions struct {
	Title string
	// Width 页面宽度（像素），0 表示自适应。
	Width int
	// ChartHeight 每张子图的高度（像素）。
	ChartHeight int
	PlotlyURL   string
}

// DefaultHTMLOptions 返回默认参数。
func DefaultHTMLOptions() HTMLOptions {
	return HTMLOptions{
		Title:       "Microstructure Plotter",
		ChartHeight: 300,
		PlotlyURL:   defaultPlotlyURL,
	}
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.PlotlyURL}}"></script>
</head>
<body>
<div id="{{.ID}}" style="{{if .Width}}width:{{.Width}}px;{{end}}height:{{.Height}}px;"></div>
<script>
Plotly.newPlot({{.ID}}, {{.Data}}, {{.Layout}}, {{.Config}});
</script>
</body>
</html>
`))

type trace struct {
	Type   string    `json:"type"`
	Mode   string    `json:"mode"`
	Name   string    `json:"name"`
	X      gapFloats `json:"x"`
	Y      gapFloats `json:"y"`
	XAxis  string    `json:"xaxis"`
	YAxis  string    `json:"yaxis"`
	Line   *lineSpec `json:"line,omitempty"`
	Marker *markSpec `json:"marker,omitempty"`
}

// gapFloats 编码时把 NaN/±Inf 写成 null，Plotly 在该处断开。
type gapFloats []float64

func (g gapFloats) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, 2+len(g)*8)
	b = append(b, '[')
	for i, v := range g {
		if i > 0 {
			b = append(b, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b = append(b, "null"...)
			continue
		}
		// 与 encoding/json 相同：常规量级用定点格式
		format := byte('f')
		if abs := math.Abs(v); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
			format = 'e'
		}
		b = strconv.AppendFloat(b, v, format, -1, 64)
	}
	return append(b, ']'), nil
}

type lineSpec struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
	Shape string  `json:"shape"`
}

type markSpec struct {
	Color  string  `json:"color"`
	Size   float64 `json:"size"`
	Symbol string  `json:"symbol"`
}

type pageData struct {
	ID        string
	Title     string
	PlotlyURL string
	Width     int
	Height    int
	Data      template.JS
	Layout    template.JS
	Config    template.JS
}

// HTML 写出一个自包含页面：一个 Plotly figure，每个品种一组坐标轴自上而下排列，
// 跟随图的 x 轴 matches 参考图，拖动或框选缩放任一子图时全部子图同步。
func HTML(w io.Writer, c *plotter.Container, opts HTMLOptions) error {
	if c == nil || len(c.Charts) == 0 {
		return ErrEmptyContainer
	}
	if opts.ChartHeight <= 0 {
		opts.ChartHeight = DefaultHTMLOptions().ChartHeight
	}
	if opts.PlotlyURL == "" {
		opts.PlotlyURL = defaultPlotlyURL
	}

	data, layout := figure(c, opts)
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal traces: %w", err)
	}
	layoutJSON, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	cfgJSON, err := json.Marshal(map[string]any{
		"scrollZoom":     true,
		"displaylogo":    false,
		"modeBarButtons": [][]string{{"pan2d", "zoom2d", "resetScale2d", "toImage"}},
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return pageTmpl.Execute(w, pageData{
		ID:        "microplot-" + c.ID,
		Title:     opts.Title,
		PlotlyURL: opts.PlotlyURL,
		Width:     opts.Width,
		Height:    opts.ChartHeight * len(c.Charts),
		Data:      template.JS(dataJSON),
		Layout:    template.JS(layoutJSON),
		Config:    template.JS(cfgJSON),
	})
}

// axisName 第 i 张图的轴名：x, x2, ... 或 xaxis, xaxis2, ...
func axisName(prefix string, i int) string {
	if i == 0 {
		return prefix
	}
	return fmt.Sprintf("%s%d", prefix, i+1)
}

func figure(c *plotter.Container, opts HTMLOptions) ([]trace, map[string]any) {
	n := len(c.Charts)
	ref := c.Reference()
	lo, hi := ref.VisibleRange()
	refZone := axisZone(ref)
	xRange := []string{plotlyDate(refZone.shift(lo)), plotlyDate(refZone.shift(hi))}

	layout := map[string]any{
		"title":      map[string]any{"text": opts.Title},
		"showlegend": false,
		"hovermode":  "closest",
		"dragmode":   "pan",
		"margin":     map[string]int{"l": 60, "r": 20, "t": 50, "b": 40},
	}
	if opts.Width > 0 {
		layout["width"] = opts.Width
	}
	layout["height"] = opts.ChartHeight * n

	var annotations []map[string]any
	traces := make([]trace, 0)
	const gap = 0.04
	band := (1.0 - gap*float64(n-1)) / float64(n)

	for i, ch := range c.Charts {
		xa, ya := axisName("x", i), axisName("y", i)
		// 自上而下：第 0 张在最上方。
		top := 1.0 - float64(i)*(band+gap)
		bottom := top - band
		if bottom < 0 {
			bottom = 0
		}

		zone := axisZone(ch)
		// 日期轴按 UTC 显示数值，先把 x 平移到方案时区；标签格式交给 Plotly 随缩放自适应。
		xaxis := map[string]any{
			"type":        "date",
			"anchor":      ya,
			"range":       xRange,
			"showgrid":    false,
			"nticks":      zone.maxTicks,
			"hoverformat": "%Y-%m-%d %H:%M:%S.%L",
		}
		if i > 0 {
			xaxis["matches"] = "x"
		}
		layout[axisName("xaxis", i)] = xaxis
		layout[axisName("yaxis", i)] = map[string]any{
			"anchor":    xa,
			"domain":    []float64{bottom, top},
			"showgrid":  ch.HGrid,
			"griddash":  "dot",
			"gridcolor": "lightgray",
		}
		annotations = append(annotations, map[string]any{
			"text":      ch.Title,
			"xref":      "paper",
			"yref":      "paper",
			"x":         0,
			"y":         top,
			"xanchor":   "left",
			"yanchor":   "bottom",
			"showarrow": false,
		})
		if ch.ShowLegend {
			layout["showlegend"] = true
		}

		for _, s := range ch.Series {
			traces = append(traces, seriesTrace(s, zone, xa, ya))
		}
	}
	layout["annotations"] = annotations
	return traces, layout
}

func seriesTrace(s plotter.Series, zone axisTZ, xa, ya string) trace {
	tr := trace{
		Type:  "scatter",
		Name:  s.Name,
		X:     zone.epochMillis(s.X),
		Y:     s.Y,
		XAxis: xa,
		YAxis: ya,
	}
	switch s.Style.Type {
	case plotter.Line:
		tr.Mode = "lines"
		tr.Line = &lineSpec{Color: s.Style.Color, Width: s.Style.LineWidth, Shape: "linear"}
		if s.Style.Render == plotter.ConnectedHold {
			tr.Line.Shape = "hv"
		}
	default:
		tr.Mode = "markers"
		tr.Marker = &markSpec{Color: s.Style.Color, Size: s.Style.MarkerSize, Symbol: plotlySymbol(s.Style.Marker)}
	}
	return tr
}

func plotlySymbol(m plotter.Marker) string {
	switch m {
	case plotter.MarkerTriangle:
		return "triangle-up"
	case plotter.MarkerDiamond:
		return "diamond"
	default:
		return "circle"
	}
}

// axisTZ 子图底轴的时区平移与刻度数上限，取自该图的 CalendarTicker。
type axisTZ struct {
	ticker   *plotter.CalendarTicker
	maxTicks int
}

func axisZone(ch *plotter.Chart) axisTZ {
	if ch.BottomAxis == nil || ch.BottomAxis.Ticker == nil {
		return axisTZ{maxTicks: plotter.DefaultTickScheme().MaxTicks}
	}
	t := ch.BottomAxis.Ticker
	return axisTZ{ticker: t, maxTicks: t.Scheme.MaxTicks}
}

func (z axisTZ) shift(sec float64) float64 {
	if z.ticker == nil {
		return sec
	}
	return sec + z.ticker.ZoneOffset(sec)
}

// epochMillis 秒 → 毫秒，Plotly 日期轴按 UTC 毫秒解释数值。
func (z axisTZ) epochMillis(secs []float64) []float64 {
	out := make([]float64, len(secs))
	for i, s := range secs {
		out[i] = z.shift(s) * 1e3
	}
	return out
}

func plotlyDate(sec float64) string {
	whole := int64(sec)
	usec := int64(math.Round((sec - float64(whole)) * 1e6))
	return time.Unix(whole, usec*1e3).UTC().Format("2006-01-02 15:04:05.000000")
}
