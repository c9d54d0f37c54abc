// Package table 提供按列存储的时间序列表：有序列名、逐格任意类型取值、
// 带类型转换的列读取以及按行过滤。
package table

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrColumnNotFound  = errors.New("column not found")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrRowWidth        = errors.New("row width does not match columns")
	ErrColumnLength    = errors.New("column length does not match table length")
)

// Table 是行 × 命名列的表。单元格取值为 int64、float64、bool、string 或 nil。
// Table 不是并发安全的。
type Table struct {
	names []string
	index map[string]int
	cols  [][]any
	rows  int
}

// New 创建只有列头的空表。
func New(columns ...string) (*Table, error) {
	t := &Table{
		names: make([]string, 0, len(columns)),
		index: make(map[string]int, len(columns)),
	}
	for _, name := range columns {
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
		}
		t.index[name] = len(t.names)
		t.names = append(t.names, name)
		t.cols = append(t.cols, nil)
	}
	return t, nil
}

// FromRows 由行数据构建表，每行宽度必须与列数一致。
func FromRows(columns []string, rows [][]any) (*Table, error) {
	t, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := t.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AppendRow 追加一行。
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.names) {
		return fmt.Errorf("%w: got %d values for %d columns", ErrRowWidth, len(values), len(t.names))
	}
	for i, v := range values {
		t.cols[i] = append(t.cols[i], v)
	}
	t.rows++
	return nil
}

// Len 返回行数。
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Empty 表示表为 nil 或没有行。
func (t *Table) Empty() bool { return t.Len() == 0 }

// Columns 返回列名副本。
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has 判断列是否存在。
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column 返回列单元格的副本。
func (t *Table) Column(name string) ([]any, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]any, len(t.cols[i]))
	copy(out, t.cols[i])
	return out, true
}

// Value 返回单个单元格。
func (t *Table) Value(row int, name string) (any, bool) {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= t.rows {
		return nil, false
	}
	return t.cols[i][row], true
}

// SetColumn 整列替换（或新增）一列，长度必须等于表的行数。
// 对没有任何列的表，首列决定行数。
func (t *Table) SetColumn(name string, values []any) error {
	if len(t.names) > 0 && len(values) != t.rows {
		return fmt.Errorf("%w: %s has %d values, table has %d rows", ErrColumnLength, name, len(values), t.rows)
	}
	cells := make([]any, len(values))
	copy(cells, values)
	if i, ok := t.index[name]; ok {
		t.cols[i] = cells
		return nil
	}
	if len(t.names) == 0 {
		t.rows = len(values)
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	t.cols = append(t.cols, cells)
	return nil
}

// Clone 深拷贝表结构（单元格为值类型，直接复制）。
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := &Table{
		names: make([]string, len(t.names)),
		index: make(map[string]int, len(t.index)),
		cols:  make([][]any, len(t.cols)),
		rows:  t.rows,
	}
	copy(c.names, t.names)
	for k, v := range t.index {
		c.index[k] = v
	}
	for i, col := range t.cols {
		c.cols[i] = make([]any, len(col))
		copy(c.cols[i], col)
	}
	return c
}

// Filter 返回 keep(row) 为 true 的行组成的新表，列结构不变。
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := &Table{
		names: make([]string, len(t.names)),
		index: make(map[string]int, len(t.index)),
		cols:  make([][]any, len(t.cols)),
	}
	copy(out.names, t.names)
	for k, v := range t.index {
		out.index[k] = v
	}
	for r := 0; r < t.rows; r++ {
		if !keep(r) {
			continue
		}
		for i := range t.cols {
			out.cols[i] = append(out.cols[i], t.cols[i][r])
		}
		out.rows++
	}
	return out
}

// Float64s 以 float64 读取整列。
func (t *Table) Float64s(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]float64, t.rows)
	for r, v := range t.cols[i] {
		f, ok := ToFloat64(v)
		if !ok {
			return nil, &CellTypeError{Column: name, Row: r, Value: v, Want: "float"}
		}
		out[r] = f
	}
	return out, nil
}

// Float64sOrNaN 与 Float64s 相同，但空单元格读作 NaN，绘图时成为缺口。
func (t *Table) Float64sOrNaN(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]float64, t.rows)
	for r, v := range t.cols[i] {
		if v == nil {
			out[r] = math.NaN()
			continue
		}
		f, ok := ToFloat64(v)
		if !ok {
			return nil, &CellTypeError{Column: name, Row: r, Value: v, Want: "float"}
		}
		out[r] = f
	}
	return out, nil
}

// Bools 以 bool 读取整列。
func (t *Table) Bools(name string) ([]bool, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]bool, t.rows)
	for r, v := range t.cols[i] {
		b, ok := ToBool(v)
		if !ok {
			return nil, &CellTypeError{Column: name, Row: r, Value: v, Want: "bool"}
		}
		out[r] = b
	}
	return out, nil
}

// Strings 以字符串读取整列，nil 单元格视为类型错误。
func (t *Table) Strings(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]string, t.rows)
	for r, v := range t.cols[i] {
		s, ok := ToString(v)
		if !ok {
			return nil, &CellTypeError{Column: name, Row: r, Value: v, Want: "string"}
		}
		out[r] = s
	}
	return out, nil
}
