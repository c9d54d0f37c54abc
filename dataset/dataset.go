// Package dataset 保存六类输入时间序列，负责赋值时的列校验与时间戳归一化，
// 并按需派生成交/订单分区与品种全集。
package dataset

import (
	"fmt"
	"sort"

	"microstructure-plotter/schema"
	"microstructure-plotter/table"

	"github.com/shopspring/decimal"
)

// timestampDigits 纳秒 epoch 的十进制位数。
const timestampDigits = 19

// Dataset 持有 quote/trade/fill-sim/fill-prod/orders/valuation 六个槽位，均可为空。
// 每张表在赋值时被复制，之后整表替换，不做增量修改。
// 组图期间调用方不得并发修改 Dataset。
type Dataset struct {
	// StrictOrderFlags 为 true 时，SetOrders 拒绝命中 0 个或多个订单分区的行。
	StrictOrderFlags bool

	tables [len(slotOrder)]*table.Table
}

var slotOrder = [...]schema.Category{
	schema.Quote,
	schema.Trade,
	schema.FillSim,
	schema.FillProd,
	schema.Orders,
	schema.Valuation,
}

// New 创建空 Dataset。
func New() *Dataset { return &Dataset{} }

func slot(c schema.Category) (int, error) {
	for i, s := range slotOrder {
		if s == c {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown category %d", int(c))
}

// Validate 只做校验不存储：列齐全、时间戳为 19 位整数、symbol 非空，严格模式下检查订单标志。
func (d *Dataset) Validate(c schema.Category, t *table.Table) error {
	if _, err := slot(c); err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%s: %w", c, ErrNilTable)
	}
	if missing := schema.Missing(c, t.Columns()); len(missing) > 0 {
		return &SchemaError{Category: c, Column: missing[0]}
	}
	if !t.Has(schema.ColTimestamp) {
		return &SchemaError{Category: c, Column: schema.ColTimestamp}
	}
	cells, _ := t.Column(schema.ColTimestamp)
	for row, v := range cells {
		if _, ok := timestampLiteral(v); !ok {
			return &TimestampFormatError{Category: c, Row: row, Value: v}
		}
	}
	syms, _ := t.Column(schema.ColSymbol)
	for row, v := range syms {
		if sym, ok := table.ToString(v); !ok || sym == "" {
			return &SymbolError{Category: c, Row: row, Value: v}
		}
	}
	if c == schema.Orders && d.StrictOrderFlags {
		if err := checkOrderFlags(t); err != nil {
			return err
		}
	}
	return nil
}

// Set 校验通过后保存 t 的副本（时间戳改写为秒），替换该槽位原有的表。
// 校验失败时不做任何修改。
func (d *Dataset) Set(c schema.Category, t *table.Table) error {
	if err := d.Validate(c, t); err != nil {
		return err
	}
	i, _ := slot(c)
	owned := t.Clone()
	if err := normalizeTimestamps(owned); err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	d.tables[i] = owned
	return nil
}

// Get 返回槽位中的表，未设置时为 nil。返回值只读。
func (d *Dataset) Get(c schema.Category) *table.Table {
	i, err := slot(c)
	if err != nil {
		return nil
	}
	return d.tables[i]
}

func (d *Dataset) SetQuotes(t *table.Table) error     { return d.Set(schema.Quote, t) }
func (d *Dataset) SetTrades(t *table.Table) error     { return d.Set(schema.Trade, t) }
func (d *Dataset) SetFillsSim(t *table.Table) error   { return d.Set(schema.FillSim, t) }
func (d *Dataset) SetFillsProd(t *table.Table) error  { return d.Set(schema.FillProd, t) }
func (d *Dataset) SetOrders(t *table.Table) error     { return d.Set(schema.Orders, t) }
func (d *Dataset) SetValuations(t *table.Table) error { return d.Set(schema.Valuation, t) }

func (d *Dataset) Quotes() *table.Table         { return d.Get(schema.Quote) }
func (d *Dataset) Trades() *table.Table         { return d.Get(schema.Trade) }
func (d *Dataset) FillsSimTable() *table.Table  { return d.Get(schema.FillSim) }
func (d *Dataset) FillsProdTable() *table.Table { return d.Get(schema.FillProd) }
func (d *Dataset) OrdersTable() *table.Table    { return d.Get(schema.Orders) }
func (d *Dataset) Valuations() *table.Table     { return d.Get(schema.Valuation) }

// Symbols 返回所有非空槽位中 symbol 列的去重并集，按字典序排列。
func (d *Dataset) Symbols() []string {
	seen := make(map[string]struct{})
	for _, t := range d.tables {
		if t == nil {
			continue
		}
		cells, ok := t.Column(schema.ColSymbol)
		if !ok {
			continue
		}
		for _, v := range cells {
			if s, ok := table.ToString(v); ok {
				seen[s] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// timestampLiteral 返回时间戳单元格的十进制字面量，仅接受恰好 19 位的非负整数。
func timestampLiteral(v any) (string, bool) {
	var lit string
	switch val := v.(type) {
	case int64:
		if val < 0 {
			return "", false
		}
		lit = fmt.Sprintf("%d", val)
	case int:
		if val < 0 {
			return "", false
		}
		lit = fmt.Sprintf("%d", val)
	case string:
		lit = val
	default:
		return "", false
	}
	if len(lit) != timestampDigits {
		return "", false
	}
	for _, r := range lit {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return lit, true
}

// normalizeTimestamps 把纳秒整数改写为秒级 float64（ns × 1e-9）。不可逆。
func normalizeTimestamps(t *table.Table) error {
	cells, _ := t.Column(schema.ColTimestamp)
	out := make([]any, len(cells))
	for i, v := range cells {
		lit, _ := timestampLiteral(v)
		ns, err := decimal.NewFromString(lit)
		if err != nil {
			return fmt.Errorf("timestamp row %d: %w", i, err)
		}
		out[i] = ns.Shift(-9).InexactFloat64()
	}
	return t.SetColumn(schema.ColTimestamp, out)
}
