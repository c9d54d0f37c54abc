package schema

import (
	"fmt"
	"strings"
)

// Category 标识一类输入时间序列。
type Category int

const (
	Quote Category = iota
	Trade
	FillSim
	FillProd
	Orders
	Valuation
)

// 公共列名。
const (
	ColTimestamp    = "timestamp"
	ColSymbol       = "symbol"
	ColPrice        = "price"
	ColBidPrice     = "bid_price"
	ColAskPrice     = "ask_price"
	ColMicroPrice   = "micro_price"
	ColIsBuy        = "is_buy"
	ColIsAggressive = "is_aggressive"
	ColIsNew        = "is_new"
	ColIsCancel     = "is_cancel"
	ColIsReject     = "is_reject"
	ColIsAck        = "is_ack"
	ColTheoPrice    = "theo_price"
)

// Schema 定义每类时间序列必须包含的列，便于集中校验。
type Schema struct {
	Category Category
	Name     string
	Required []string
}

var schemas = [...]Schema{
	Quote: {
		Category: Quote,
		Name:     "quote_data",
		Required: []string{ColTimestamp, ColSymbol, ColBidPrice, ColAskPrice, ColMicroPrice},
	},
	Trade: {
		Category: Trade,
		Name:     "trade_data",
		Required: []string{ColTimestamp, ColSymbol, ColPrice},
	},
	FillSim: {
		Category: FillSim,
		Name:     "fill_data_sim",
		Required: []string{ColTimestamp, ColSymbol, ColPrice, ColIsBuy, ColIsAggressive},
	},
	FillProd: {
		Category: FillProd,
		Name:     "fill_data_prod",
		Required: []string{ColTimestamp, ColSymbol, ColPrice, ColIsBuy, ColIsAggressive},
	},
	Orders: {
		Category: Orders,
		Name:     "orders",
		Required: []string{ColTimestamp, ColSymbol, ColPrice, ColIsNew, ColIsCancel, ColIsReject, ColIsAck},
	},
	Valuation: {
		Category: Valuation,
		Name:     "val_data",
		Required: []string{ColTimestamp, ColSymbol, ColTheoPrice},
	},
}

func (c Category) valid() bool { return c >= Quote && c <= Valuation }

// String 返回类别在日志与错误信息中使用的名字。
func (c Category) String() string {
	if !c.valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return schemas[c].Name
}

// Categories 按固定顺序返回全部类别。
func Categories() []Category {
	return []Category{Quote, Trade, FillSim, FillProd, Orders, Valuation}
}

// ParseCategory 接受 String() 的结果，也接受 quote/trade/fill_sim 这类短名。
func ParseCategory(name string) (Category, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, c := range Categories() {
		if n == schemas[c].Name {
			return c, nil
		}
	}
	switch n {
	case "quote", "quotes":
		return Quote, nil
	case "trade", "trades":
		return Trade, nil
	case "fill_sim", "fills_sim":
		return FillSim, nil
	case "fill_prod", "fills_prod":
		return FillProd, nil
	case "order":
		return Orders, nil
	case "valuation", "valuations", "val":
		return Valuation, nil
	}
	return 0, fmt.Errorf("unknown category %q", name)
}

// RequiredColumns 返回类别要求的列（有序副本），未知类别返回 nil。
func RequiredColumns(c Category) []string {
	if !c.valid() {
		return nil
	}
	out := make([]string, len(schemas[c].Required))
	copy(out, schemas[c].Required)
	return out
}

// Missing 返回 columns 中缺失的必需列，顺序与 RequiredColumns 一致。
func Missing(c Category, columns []string) []string {
	have := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		have[col] = struct{}{}
	}
	var missing []string
	for _, key := range RequiredColumns(c) {
		if _, ok := have[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
