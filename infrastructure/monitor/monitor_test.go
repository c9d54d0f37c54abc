package monitor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCounters(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordRowsLoaded("quote_data", 10)
	m.RecordRowsLoaded("quote_data", 5)
	m.RecordValidationFailure("orders")
	m.RecordLoadLatency("quote_data", 3*time.Millisecond)

	assert.Equal(t, 15.0, testutil.ToFloat64(m.rowsLoaded.WithLabelValues("quote_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationFailures.WithLabelValues("orders")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.loadLatency))
}

func TestObserverMethods(t *testing.T) {
	m := New(DefaultConfig())
	m.ObserveChart("AAA", []string{"quote_bid_price", "quote_ask_price"})
	m.ObserveChart("BBB", []string{"quote_bid_price"})
	m.ObserveCompose(20*time.Millisecond, 2, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.chartsComposed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.seriesDrawn.WithLabelValues("quote_bid_price")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.symbols))

	m.ObserveCompose(time.Millisecond, 0, errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.composeErrors))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.symbols), "failed compose keeps last symbol count")
}

func TestRenderCounters(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordRender("html", 5*time.Millisecond, nil)
	m.RecordRender("png", 0, errors.New("disk full"))
	m.RecordReload()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.renders.WithLabelValues("html")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renderErrors.WithLabelValues("png")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reloads))
}

func TestWriteTextfile(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordRowsLoaded("trade_data", 3)

	path := filepath.Join(t.TempDir(), "microplot.prom")
	require.NoError(t, m.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `microplot_rows_loaded_total{category="trade_data"} 3`)

	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
