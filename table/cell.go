package table

import (
	"fmt"
	"strconv"
	"strings"
)

// CellTypeError 表示单元格无法转换为目标类型。
type CellTypeError struct {
	Column string
	Row    int
	Value  any
	Want   string
}

func (e *CellTypeError) Error() string {
	return fmt.Sprintf("column %s row %d: cannot use %v (%T) as %s", e.Column, e.Row, e.Value, e.Value, e.Want)
}

// Infer 把 CSV 文本推断为 int64 / float64 / bool / string，空串为 nil。
func Infer(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// ToFloat64 转换数值单元格。
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ToBool 转换布尔单元格，接受 0/1 与 true/false 文本。
func ToBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case int64:
		return val != 0, val == 0 || val == 1
	case int:
		return val != 0, val == 0 || val == 1
	case float64:
		return val != 0, val == 0 || val == 1
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		return b, err == nil
	default:
		return false, false
	}
}

// ToString 转换标识类单元格（如 symbol）。数值型代码按十进制格式输出。
func ToString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int:
		return strconv.Itoa(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

// Format 把单元格写回 CSV 文本。
func Format(v any) string {
	if v == nil {
		return ""
	}
	s, ok := ToString(v)
	if !ok {
		return fmt.Sprint(v)
	}
	return s
}
