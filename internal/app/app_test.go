package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"microstructure-plotter/config"
	"microstructure-plotter/dataset"
	"microstructure-plotter/plotter"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoSymbolQuotes = `timestamp,symbol,bid_price,ask_price,micro_price
1700000000000000000,AAA,99.5,100.5,100.0
1700000000100000000,AAA,99.6,100.6,100.1
1700000000000000000,BBB,9.5,10.5,10.0
1700000000200000000,BBB,9.6,10.6,10.1
`

func testConfig(t *testing.T, dir string) config.AppConfig {
	t.Helper()
	quotes := filepath.Join(dir, "quotes.csv")
	require.NoError(t, os.WriteFile(quotes, []byte(twoSymbolQuotes), 0o644))

	cfg := config.Default()
	cfg.Log.Outputs = nil
	cfg.Inputs.Quote = quotes
	cfg.Output.HTML = filepath.Join(dir, "out", "chart.html")
	cfg.Metrics.Textfile = filepath.Join(dir, "microplot.prom")
	require.NoError(t, config.Validate(cfg))
	return cfg
}

func TestRunOnceWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Output.Image = filepath.Join(dir, "out", "chart.png")

	a := New(cfg)
	require.NoError(t, a.Build())
	defer a.Close()

	c, err := a.RunOnce()
	require.NoError(t, err)
	require.Len(t, c.Charts, 2)
	assert.True(t, c.Charts[1].LinkedTo(c.Charts[0]))

	html, err := os.ReadFile(cfg.Output.HTML)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Symbol: BBB")

	png, err := os.ReadFile(cfg.Output.Image)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(png), "\x89PNG"))

	prom, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `microplot_rows_loaded_total{category="quote_data"} 4`)
	assert.Contains(t, string(prom), "microplot_charts_composed_total 2")
}

func TestRunOnceReportsLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Inputs.Orders = filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(cfg.Inputs.Orders, []byte(
		"timestamp,symbol,price,is_new,is_cancel,is_reject,is_ack\n1700000000000000000,AAA,1,true,true,false,false\n"), 0o644))
	cfg.Dataset.StrictOrderFlags = true

	a := New(cfg)
	require.NoError(t, a.Build())
	_, err := a.RunOnce()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orders")
	n, err := testutil.GatherAndCount(a.Monitor().Registry(), "microplot_validation_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunOnceRendersBlankCellsAsGaps(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Output.Image = filepath.Join(dir, "out", "chart.svg")
	require.NoError(t, os.WriteFile(cfg.Inputs.Quote, []byte(
		"timestamp,symbol,bid_price,ask_price,micro_price\n"+
			"1700000000000000000,AAA,99.5,,100.0\n"+
			"1700000000100000000,AAA,99.6,100.6,100.1\n"+
			"1700000000200000000,AAA,99.7,NaN,100.2\n"), 0o644))

	a := New(cfg)
	require.NoError(t, a.Build())
	defer a.Close()

	c, err := a.RunOnce()
	require.NoError(t, err)
	require.Len(t, c.Charts, 1)

	html, err := os.ReadFile(cfg.Output.HTML)
	require.NoError(t, err)
	assert.Contains(t, string(html), `"y":[null,100.6,null]`)
	svg, err := os.ReadFile(cfg.Output.Image)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestRunOnceRejectsBlankSymbol(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	require.NoError(t, os.WriteFile(cfg.Inputs.Quote, []byte(
		"timestamp,symbol,bid_price,ask_price,micro_price\n"+
			"1700000000000000000,AAA,99.5,100.5,100.0\n"+
			"1700000000100000000,,99.6,100.6,100.1\n"), 0o644))

	a := New(cfg)
	require.NoError(t, a.Build())
	_, err := a.RunOnce()
	var symErr *dataset.SymbolError
	require.True(t, errors.As(err, &symErr), "got %v", err)
	assert.Equal(t, 1, symErr.Row)
	var compErr *plotter.CompositionError
	assert.False(t, errors.As(err, &compErr))
}

func TestRunOnceComposeError(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	require.NoError(t, os.WriteFile(cfg.Inputs.Quote, []byte(
		"timestamp,symbol,bid_price,ask_price,micro_price\n1700000000000000000,AAA,x,1,1\n"), 0o644))

	a := New(cfg)
	require.NoError(t, a.Build())
	_, err := a.RunOnce()
	var compErr *plotter.CompositionError
	require.True(t, errors.As(err, &compErr))
	assert.Equal(t, "AAA", compErr.Symbol)
	_, statErr := os.Stat(cfg.Output.HTML)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWatchRerendersOnChange(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Watch.Cooldown = 20 * time.Millisecond

	a := New(cfg)
	require.NoError(t, a.Build())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(cfg.Output.HTML)
		return err == nil && a.HealthCheck() == nil
	}, 2*time.Second, 10*time.Millisecond)

	updated := twoSymbolQuotes + "1700000000300000000,CCC,1,2,1.5\n"
	require.NoError(t, os.WriteFile(cfg.Inputs.Quote, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		b, err := os.ReadFile(cfg.Output.HTML)
		return err == nil && strings.Contains(string(b), "Symbol: CCC")
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop")
	}
	prom, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "microplot_reloads_total")
}
