package render

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"microstructure-plotter/dataset"
	"microstructure-plotter/plotter"
	"microstructure-plotter/schema"
	"microstructure-plotter/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeFixture(t *testing.T, symbols ...string) *plotter.Container {
	t.Helper()
	var quotes, orders [][]any
	for si, s := range symbols {
		for i := 0; i < 10; i++ {
			ts := int64(1700000000000000000) + int64(si)*1_000_000_000 + int64(i)*100_000_000
			mid := 100.0 + float64(i%3)
			quotes = append(quotes, []any{ts, s, mid - 0.5, mid + 0.5, mid})
		}
		orders = append(orders, []any{int64(1700000000500000000), s, 100.0, true, false, false, false})
	}
	qt, err := table.FromRows(schema.RequiredColumns(schema.Quote), quotes)
	require.NoError(t, err)
	ot, err := table.FromRows(schema.RequiredColumns(schema.Orders), orders)
	require.NoError(t, err)

	ds := dataset.New()
	require.NoError(t, ds.SetQuotes(qt))
	require.NoError(t, ds.SetOrders(ot))
	c, err := plotter.NewComposer(ds, plotter.DefaultOptions()).Compose()
	require.NoError(t, err)
	return c
}

func TestHTMLLinksFollowerAxes(t *testing.T) {
	c := composeFixture(t, "AAA", "BBB", "CCC")

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, c, DefaultHTMLOptions()))
	out := buf.String()

	assert.Contains(t, out, "<title>Microstructure Plotter</title>")
	assert.Contains(t, out, "Plotly.newPlot(")
	assert.Equal(t, 2, strings.Count(out, `"matches":"x"`))
	for _, sym := range []string{"AAA", "BBB", "CCC"} {
		assert.Contains(t, out, "Symbol: "+sym)
	}
	assert.Contains(t, out, `"xaxis3"`)
	assert.Contains(t, out, `"shape":"hv"`)
	assert.Contains(t, out, `"symbol":"diamond"`)
	assert.Contains(t, out, `"showlegend":false`)
	// 初始窗口来自共享 TimeRange
	assert.Contains(t, out, `"2023-11-14 22:13:20.000000"`)
}

func TestHTMLLegendFlag(t *testing.T) {
	c := composeFixture(t, "AAA")
	for _, ch := range c.Charts {
		ch.ShowLegend = true
	}
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, c, HTMLOptions{Title: "t"}))
	assert.Contains(t, buf.String(), `"showlegend":true`)
	assert.Contains(t, buf.String(), defaultPlotlyURL)
}

func TestHTMLReflectsChangedRange(t *testing.T) {
	c := composeFixture(t, "AAA", "BBB")
	require.NoError(t, c.Charts[1].SetVisibleRange(1700000001, 1700000001.5))

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, c, DefaultHTMLOptions()))
	assert.Contains(t, buf.String(), `"2023-11-14 22:13:21.000000"`)
	assert.Contains(t, buf.String(), `"2023-11-14 22:13:21.500000"`)
}

func TestImagePNGAndSVG(t *testing.T) {
	c := composeFixture(t, "AAA", "BBB")

	var png bytes.Buffer
	require.NoError(t, Image(&png, c, ImageOptions{Format: FormatPNG, Width: 400, ChartHeight: 150}))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	var svg bytes.Buffer
	require.NoError(t, Image(&svg, c, ImageOptions{Format: FormatSVG}))
	assert.Contains(t, svg.String(), "<svg")

	assert.ErrorIs(t, Image(&svg, c, ImageOptions{Format: FormatHTML}), ErrUnknownFormat)
}

func TestEmptyContainer(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, HTML(&buf, &plotter.Container{}, DefaultHTMLOptions()), ErrEmptyContainer)
	assert.ErrorIs(t, Image(&buf, nil, DefaultImageOptions()), ErrEmptyContainer)
}

func TestWriteFile(t *testing.T) {
	c := composeFixture(t, "AAA")
	dir := t.TempDir()

	htmlPath := filepath.Join(dir, "out", "chart.html")
	require.NoError(t, WriteFile(htmlPath, c, DefaultOptions()))
	b, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Symbol: AAA")

	pngPath := filepath.Join(dir, "chart.PNG")
	require.NoError(t, WriteFile(pngPath, c, DefaultOptions()))
	b, err = os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))

	err = WriteFile(filepath.Join(dir, "chart.pdf"), c, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnknownFormat)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".microplot-"), "temp file left behind: %s", e.Name())
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"a.html": FormatHTML,
		"a.HTM":  FormatHTML,
		"a.png":  FormatPNG,
		"a.svg":  FormatSVG,
	}
	for path, want := range cases {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("a")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRenderWritesGapsForNonFiniteValues(t *testing.T) {
	qt, err := table.FromRows(schema.RequiredColumns(schema.Quote), [][]any{
		{int64(1700000000000000000), "AAA", 99.5, nil, 100.0},
		{int64(1700000000100000000), "AAA", 99.6, math.NaN(), 100.1},
		{int64(1700000000200000000), "AAA", 99.7, 100.7, 100.2},
		{int64(1700000000300000000), "AAA", 99.8, 100.8, math.Inf(-1)},
	})
	require.NoError(t, err)
	ds := dataset.New()
	require.NoError(t, ds.SetQuotes(qt))
	c, err := plotter.NewComposer(ds, plotter.DefaultOptions()).Compose()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, c, DefaultHTMLOptions()))
	assert.Contains(t, buf.String(), `"y":[null,null,100.7,100.8]`)
	assert.Contains(t, buf.String(), `"y":[100,100.1,100.2,null]`)

	var png bytes.Buffer
	require.NoError(t, Image(&png, c, ImageOptions{Format: FormatPNG, Width: 400, ChartHeight: 150}))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))
}

func TestHTMLFollowsTickScheme(t *testing.T) {
	qt, err := table.FromRows(schema.RequiredColumns(schema.Quote), [][]any{
		{int64(1700000000000000000), "AAA", 99.5, 100.5, 100.0},
		{int64(1700000001000000000), "AAA", 99.6, 100.6, 100.1},
	})
	require.NoError(t, err)
	ds := dataset.New()
	require.NoError(t, ds.SetQuotes(qt))

	render := func(scheme plotter.TickScheme) string {
		opts := plotter.DefaultOptions()
		opts.TickScheme = scheme
		c, err := plotter.NewComposer(ds, opts).Compose()
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, HTML(&buf, c, DefaultHTMLOptions()))
		return buf.String()
	}

	utc := render(plotter.DefaultTickScheme())
	assert.Contains(t, utc, `"2023-11-14 22:13:20.000000"`)
	assert.Contains(t, utc, `"nticks":8`)
	assert.NotContains(t, utc, "tickformat")

	shanghai := render(plotter.TickScheme{MaxTicks: 5, Location: time.FixedZone("UTC+8", 8*3600)})
	assert.Contains(t, shanghai, `"2023-11-15 06:13:20.000000"`)
	assert.NotContains(t, shanghai, `"2023-11-14 22:13:20.000000"`)
	assert.Contains(t, shanghai, `"nticks":5`)
	// x 数据同样平移 8 小时
	assert.Contains(t, shanghai, `"x":[1700028800000,1700028801000]`)
}
