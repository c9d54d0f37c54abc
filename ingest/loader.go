// Package ingest 把配置中的 CSV 文件逐类读入 Dataset。
package ingest

import (
	"fmt"
	"os"
	"strings"
	"time"

	"microstructure-plotter/config"
	"microstructure-plotter/dataset"
	"microstructure-plotter/infrastructure/logger"
	"microstructure-plotter/schema"
	"microstructure-plotter/table"

	"go.uber.org/zap"
)

// CheckPath 要求路径以小写 .csv 结尾且指向普通文件。
func CheckPath(path string) error {
	if !strings.HasSuffix(path, ".csv") {
		return &InputPathError{Path: path, Reason: "not a .csv file"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return &InputPathError{Path: path, Reason: err.Error()}
	}
	if !info.Mode().IsRegular() {
		return &InputPathError{Path: path, Reason: "not a regular file"}
	}
	return nil
}

// Recorder 记录加载统计，monitor.Monitor 实现该接口。
type Recorder interface {
	RecordRowsLoaded(category string, rows int)
	RecordValidationFailure(category string)
	RecordLoadLatency(category string, elapsed time.Duration)
}

// Option 可选依赖。
type Option func(*Loader)

// WithLogger 注入日志器。
func WithLogger(l *logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithRecorder 注入统计。
func WithRecorder(r Recorder) Option {
	return func(ld *Loader) { ld.recorder = r }
}

// Loader 按 schema.Categories() 顺序加载已配置的输入，遇到第一个错误即停止。
type Loader struct {
	logger   *logger.Logger
	recorder Recorder
}

// NewLoader 创建加载器。
func NewLoader(options ...Option) *Loader {
	ld := &Loader{logger: logger.Nop()}
	for _, o := range options {
		o(ld)
	}
	return ld
}

// Load 读取 inputs 中每个非空路径并写入 ds。失败时 ds 中已成功写入的类别保持不变。
func (ld *Loader) Load(inputs config.Inputs, ds *dataset.Dataset) error {
	if inputs.Quote == "" {
		return &InputPathError{Path: "", Reason: "quote data file is required"}
	}
	for _, c := range schema.Categories() {
		path := inputs.Path(c)
		if path == "" {
			continue
		}
		if err := ld.loadOne(c, path, ds); err != nil {
			return err
		}
	}
	return nil
}

func (ld *Loader) loadOne(c schema.Category, path string, ds *dataset.Dataset) error {
	start := time.Now()
	ld.logger.Debug("reading input", zap.String("category", c.String()), zap.String("path", path))

	t, err := ReadFile(c, path)
	if err == nil {
		err = ds.Set(c, t)
	}
	if err != nil {
		if ld.recorder != nil {
			ld.recorder.RecordValidationFailure(c.String())
		}
		return fmt.Errorf("load %s from %s: %w", c, path, err)
	}

	elapsed := time.Since(start)
	ld.logger.LogLoad(c.String(), path, t.Len(), elapsed)
	if ld.recorder != nil {
		ld.recorder.RecordRowsLoaded(c.String(), t.Len())
		ld.recorder.RecordLoadLatency(c.String(), elapsed)
	}
	return nil
}

// ReadFile 检查路径后读取 CSV，只保留该类别要求的列。
func ReadFile(c schema.Category, path string) (*table.Table, error) {
	if err := CheckPath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return table.ReadCSV(f, schema.RequiredColumns(c))
}
