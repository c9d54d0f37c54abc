package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"microstructure-plotter/infrastructure/logger"
	"microstructure-plotter/infrastructure/monitor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	startErr, stopErr, healthErr error
	started, stopped             int
}

func (f *fakeService) Start(context.Context) error {
	f.started++
	return f.startErr
}

func (f *fakeService) Stop() error {
	f.stopped++
	return f.stopErr
}

func (f *fakeService) Health() error { return f.healthErr }

func newTestServices(path string) *services {
	m := &metricsFile{path: path, monitor: monitor.New(monitor.DefaultConfig()), logger: logger.Nop()}
	return newServices(m, logger.Nop())
}

func TestServicesStartRollsBackOnFailure(t *testing.T) {
	s := newTestServices("")
	a, b := &fakeService{}, &fakeService{startErr: errors.New("boom")}
	s.add("a", a)
	s.add("b", b)

	err := s.start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start b")
	assert.Equal(t, 1, a.stopped)
	assert.Equal(t, 0, b.stopped)
}

func TestServicesStopJoinsErrorsAndFlushesMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "microplot.prom")
	s := newTestServices(path)
	errA, errB := errors.New("a failed"), errors.New("b failed")
	a, b := &fakeService{stopErr: errA}, &fakeService{stopErr: errB}
	s.add("a", a)
	s.add("b", b)

	require.NoError(t, s.start(context.Background()))
	require.NoError(t, os.Remove(path))

	err := s.stop()
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "metrics written on stop")
}

func TestServicesHealth(t *testing.T) {
	s := newTestServices("")
	svc := &fakeService{}
	s.add("reloader", svc)
	assert.NoError(t, s.health())

	svc.healthErr = errors.New("not running")
	err := s.health()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reloader unhealthy")

	bad := newTestServices(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	require.Error(t, bad.metrics.flush())
	assert.Error(t, bad.health())
}
