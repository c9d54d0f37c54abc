package render

import (
	"fmt"
	"io"
	"math"

	"microstructure-plotter/plotter"

	"gonum.org/v1/plot"
	plotters "gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

// ImageOptions 静态图参数，尺寸单位为像素（96 DPI）。
type ImageOptions struct {
	Format Format
	Width  int
	// ChartHeight 每张子图的高度。
	ChartHeight int
}

// DefaultImageOptions 返回默认参数。
func DefaultImageOptions() ImageOptions {
	return ImageOptions{Format: FormatPNG, Width: 1200, ChartHeight: 300}
}

const dpi = 96

func pixels(n int) vg.Length { return vg.Length(n) * vg.Inch / dpi }

// Image 用 gonum/plot 把全部子图纵向堆叠画到一张 PNG 或 SVG 上。
// 每张子图的横轴范围取自共享的 TimeRange，刻度由各自的 CalendarTicker 生成。
func Image(w io.Writer, c *plotter.Container, opts ImageOptions) error {
	if c == nil || len(c.Charts) == 0 {
		return ErrEmptyContainer
	}
	def := DefaultImageOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.ChartHeight <= 0 {
		opts.ChartHeight = def.ChartHeight
	}

	rows := make([][]*plot.Plot, len(c.Charts))
	for i, ch := range c.Charts {
		p, err := chartPlot(ch)
		if err != nil {
			return fmt.Errorf("chart %s: %w", ch.Symbol, err)
		}
		rows[i] = []*plot.Plot{p}
	}

	width, height := pixels(opts.Width), pixels(opts.ChartHeight*len(c.Charts))
	tiles := draw.Tiles{
		Rows:      len(rows),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter * 2,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	switch opts.Format {
	case FormatSVG:
		canvas := vgsvg.New(width, height)
		drawRows(rows, tiles, draw.New(canvas))
		if _, err := canvas.WriteTo(w); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
	case FormatPNG:
		canvas := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
		drawRows(rows, tiles, draw.New(canvas))
		if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(w); err != nil {
			return fmt.Errorf("write png: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, opts.Format)
	}
	return nil
}

func drawRows(rows [][]*plot.Plot, tiles draw.Tiles, dc draw.Canvas) {
	canvases := plot.Align(rows, tiles, dc)
	for j := range rows {
		for i, p := range rows[j] {
			p.Draw(canvases[j][i])
		}
	}
}

func chartPlot(ch *plotter.Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = ch.Title
	p.Title.TextStyle.Font.Size = vg.Points(11)

	if ch.HGrid {
		grid := plotters.NewGrid()
		grid.Vertical.Color = nil
		grid.Horizontal.Color = plotter.ColorRGBA("lightgray")
		grid.Horizontal.Dashes = []vg.Length{vg.Points(1), vg.Points(3)}
		p.Add(grid)
	}

	for _, s := range ch.Series {
		clr := plotter.ColorRGBA(s.Style.Color)
		runs := finiteRuns(s.X, s.Y)

		switch s.Style.Type {
		case plotter.Line:
			// 每段连续的有效点画一条线，NaN 处断开。
			for i, run := range runs {
				l, err := plotters.NewLine(run)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", s.Name, err)
				}
				l.LineStyle.Color = clr
				l.LineStyle.Width = vg.Points(s.Style.LineWidth / 2)
				if s.Style.Render == plotter.ConnectedHold {
					l.StepStyle = plotters.PostStep
				}
				p.Add(l)
				if ch.ShowLegend && i == 0 {
					p.Legend.Add(s.Name, l)
				}
			}
		default:
			var pts plotters.XYs
			for _, run := range runs {
				pts = append(pts, run...)
			}
			if len(pts) == 0 {
				continue
			}
			sc, err := plotters.NewScatter(pts)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.Name, err)
			}
			sc.GlyphStyle = draw.GlyphStyle{
				Color:  clr,
				Radius: vg.Points(s.Style.MarkerSize / 3),
				Shape:  glyph(s.Style.Marker),
			}
			p.Add(sc)
			if ch.ShowLegend {
				p.Legend.Add(s.Name, sc)
			}
		}
	}
	p.Legend.Top = true

	// 横轴：共享窗口 + 共享 mapper + 本图自己的刻度生成器。
	lo, hi := ch.VisibleRange()
	p.X.Min, p.X.Max = lo, hi
	if ch.BottomAxis != nil {
		if ch.BottomAxis.Mapper != nil {
			p.X.Scale = ch.BottomAxis.Mapper
		}
		if ch.BottomAxis.Ticker != nil {
			p.X.Tick.Marker = calendarMarker{ch.BottomAxis.Ticker}
		}
	}
	if ylo, yhi, ok := ch.ValueBounds(); ok {
		pad := (yhi - ylo) * 0.05
		if pad == 0 {
			pad = 0.5
		}
		p.Y.Min, p.Y.Max = ylo-pad, yhi+pad
	}
	return p, nil
}

// finiteRuns 把序列切成只含有限值的连续片段。
func finiteRuns(x, y []float64) []plotters.XYs {
	var runs []plotters.XYs
	var cur plotters.XYs
	for i := range x {
		if !finite(x[i]) || !finite(y[i]) {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotters.XY{X: x[i], Y: y[i]})
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// calendarMarker 把 CalendarTicker 适配为 plot.Ticker。
type calendarMarker struct {
	t *plotter.CalendarTicker
}

func (m calendarMarker) Ticks(min, max float64) []plot.Tick {
	ticks := m.t.Ticks(min, max)
	out := make([]plot.Tick, len(ticks))
	for i, t := range ticks {
		out[i] = plot.Tick{Value: t.Value, Label: t.Label}
	}
	return out
}

func glyph(m plotter.Marker) draw.GlyphDrawer {
	switch m {
	case plotter.MarkerTriangle:
		return draw.TriangleGlyph{}
	case plotter.MarkerDiamond:
		return diamondGlyph{}
	default:
		return draw.CircleGlyph{}
	}
}

// diamondGlyph 实心菱形，gonum 自带的 glyph 里没有。
type diamondGlyph struct{}

func (diamondGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	r := sty.Radius
	c.FillPolygon(sty.Color, []vg.Point{
		{X: pt.X, Y: pt.Y + r},
		{X: pt.X + r, Y: pt.Y},
		{X: pt.X, Y: pt.Y - r},
		{X: pt.X - r, Y: pt.Y},
	})
}
