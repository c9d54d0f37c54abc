package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ReadCSV 读取带表头的 CSV。columns 非空时只保留这些列（按 columns 的顺序），
// 文件中不存在的列直接跳过，由调用方的 schema 校验报告缺失。
func ReadCSV(r io.Reader, columns []string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read csv header: empty input")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; dup {
			return nil, fmt.Errorf("read csv header: %w: %s", ErrDuplicateColumn, h)
		}
		pos[h] = i
	}

	keep := columns
	if len(keep) == 0 {
		keep = append([]string(nil), header...)
	}
	var names []string
	var src []int
	for _, name := range keep {
		i, ok := pos[name]
		if !ok {
			continue
		}
		names = append(names, name)
		src = append(src, i)
	}

	t, err := New(names...)
	if err != nil {
		return nil, err
	}
	row := make([]any, len(src))
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		for j, i := range src {
			row[j] = Infer(rec[i])
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
	}
	return t, nil
}

// WriteCSV 以表头 + 行的形式写出整张表。
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.names); err != nil {
		return err
	}
	rec := make([]string, len(t.names))
	for r := 0; r < t.rows; r++ {
		for i := range t.cols {
			rec[i] = Format(t.cols[i][r])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
