// Package render 把组好的联动子图输出为交互式 HTML 或静态 PNG/SVG。
package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"microstructure-plotter/plotter"
)

var (
	ErrEmptyContainer = errors.New("container has no charts")
	ErrUnknownFormat  = errors.New("unknown output format")
)

// Format 输出格式。
type Format int

const (
	FormatHTML Format = iota
	FormatPNG
	FormatSVG
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatSVG:
		return "svg"
	default:
		return "html"
	}
}

// FormatFromPath 按扩展名判断格式。
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML, nil
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Options 汇总两种渲染器的参数。
type Options struct {
	HTML  HTMLOptions
	Image ImageOptions
}

// DefaultOptions 返回默认参数。
func DefaultOptions() Options {
	return Options{HTML: DefaultHTMLOptions(), Image: DefaultImageOptions()}
}

// WriteFile 按扩展名选择渲染器写出文件。先写临时文件再改名，失败时不留下半截输出。
func WriteFile(path string, c *plotter.Container, opts Options) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".microplot-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	switch format {
	case FormatHTML:
		err = HTML(tmp, c, opts.HTML)
	default:
		img := opts.Image
		img.Format = format
		err = Image(tmp, c, img)
	}
	if err != nil {
		tmp.Close()
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
