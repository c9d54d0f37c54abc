package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"microstructure-plotter/infrastructure/logger"
	"microstructure-plotter/infrastructure/monitor"

	"go.uber.org/zap"
)

// service 监听模式下随 App 启停的组件（目前只有 reload.Reloader）。
type service interface {
	Start(ctx context.Context) error
	Stop() error
	Health() error
}

type namedService struct {
	name string
	svc  service
}

// services 按注册顺序启动、逆序停止。指标 textfile 在启动前和全部停止后各写一次，
// 它的写入错误也计入健康状态。
type services struct {
	mu      sync.RWMutex
	entries []namedService
	metrics *metricsFile
	logger  *logger.Logger
}

func newServices(metrics *metricsFile, log *logger.Logger) *services {
	return &services{metrics: metrics, logger: log}
}

func (s *services) add(name string, svc service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, namedService{name: name, svc: svc})
}

// start 启动全部服务；某个失败时逆序停止已启动的服务。
func (s *services) start(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.metrics.flush(); err != nil {
		return fmt.Errorf("start metrics: %w", err)
	}
	for i, e := range s.entries {
		if err := e.svc.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = s.entries[j].svc.Stop()
			}
			return fmt.Errorf("start %s: %w", e.name, err)
		}
		s.logger.Debug("service started", zap.String("service", e.name))
	}
	return nil
}

// stop 逆序停止全部服务并写出最终指标，汇总所有错误。
func (s *services) stop() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if err := e.svc.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", e.name, err))
		}
	}
	if err := s.metrics.flush(); err != nil {
		errs = append(errs, fmt.Errorf("flush metrics: %w", err))
	}
	return errors.Join(errs...)
}

func (s *services) health() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if err := e.svc.Health(); err != nil {
			return fmt.Errorf("%s unhealthy: %w", e.name, err)
		}
	}
	if err := s.metrics.err(); err != nil {
		return fmt.Errorf("metrics textfile: %w", err)
	}
	return nil
}

// metricsFile 把 monitor 写到 Prometheus textfile，供 node_exporter 采集。path 为空时不写。
type metricsFile struct {
	path    string
	monitor *monitor.Monitor
	logger  *logger.Logger

	mu      sync.Mutex
	lastErr error
}

func (m *metricsFile) flush() error {
	if m.path == "" {
		return nil
	}
	err := m.monitor.WriteTextfile(m.path)
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
	if err != nil {
		m.logger.LogError(err, map[string]interface{}{"action": "write_metrics", "path": m.path})
	}
	return err
}

func (m *metricsFile) err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}
