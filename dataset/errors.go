package dataset

import (
	"errors"
	"fmt"

	"microstructure-plotter/schema"
)

var ErrNilTable = errors.New("nil table")

// SchemaError 表示缺少必需列。
type SchemaError struct {
	Category schema.Category
	Column   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("column:%s not in %s", e.Column, e.Category)
}

// TimestampFormatError 表示时间戳不是 19 位整数（纳秒 epoch）。
type TimestampFormatError struct {
	Category schema.Category
	Row      int
	Value    any
}

func (e *TimestampFormatError) Error() string {
	return fmt.Sprintf("%s: timestamp %v at row %d is not a 19-digit nanosecond epoch", e.Category, e.Value, e.Row)
}

// SymbolError 表示 symbol 单元格为空或无法作为品种名。
type SymbolError struct {
	Category schema.Category
	Row      int
	Value    any
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s: empty or invalid symbol %v at row %d", e.Category, e.Value, e.Row)
}

// OrderFlagError 仅在 StrictOrderFlags 下出现：某行命中 0 个或多个订单分区。
type OrderFlagError struct {
	Row     int
	Matches []OrderKind
}

func (e *OrderFlagError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("orders: row %d matches no order kind", e.Row)
	}
	return fmt.Sprintf("orders: row %d matches %d order kinds %v", e.Row, len(e.Matches), e.Matches)
}
