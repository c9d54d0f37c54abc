package plotter

import (
	"fmt"
	"math"

	"microstructure-plotter/dataset"
	"microstructure-plotter/schema"
	"microstructure-plotter/table"
)

// Stream 一条数据流：时间（秒）与取值。
type Stream struct {
	X []float64
	Y []float64
}

// Extent 返回 X 的最小/最大值。
func (s *Stream) Extent() (lo, hi float64, ok bool) {
	if s == nil || len(s.X) == 0 {
		return 0, 0, false
	}
	lo, hi = s.X[0], s.X[0]
	for _, x := range s.X[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi, true
}

// Slice 单个品种、单次绘制使用的数据切片，只包含按品种过滤后非空的流。
// 每张图构建一次，不缓存。
type Slice struct {
	Symbol  string
	streams [numStreamKinds]*Stream
}

// Stream 返回某类流，缺失时为 nil。
func (s *Slice) Stream(k StreamKind) *Stream {
	if !k.valid() {
		return nil
	}
	return s.streams[k]
}

// Has 判断流是否存在。
func (s *Slice) Has(k StreamKind) bool { return s.Stream(k) != nil }

// Kinds 按枚举顺序返回存在的流。
func (s *Slice) Kinds() []StreamKind {
	var out []StreamKind
	for k, st := range s.streams {
		if st != nil {
			out = append(out, StreamKind(k))
		}
	}
	return out
}

// Len 存在的流数量。
func (s *Slice) Len() int { return len(s.Kinds()) }

// BuildSlice 从 Dataset 中提取 symbol 的全部数据流。
func BuildSlice(ds *dataset.Dataset, symbol string) (*Slice, error) {
	s := &Slice{Symbol: symbol}

	if q := ds.Quotes(); !q.Empty() {
		rows, err := filterSymbol(q, symbol)
		if err != nil {
			return nil, fmt.Errorf("quote_data: %w", err)
		}
		cols := [...]string{
			QuoteBid:   schema.ColBidPrice,
			QuoteAsk:   schema.ColAskPrice,
			QuoteMicro: schema.ColMicroPrice,
		}
		for k, col := range cols {
			if err := s.add(StreamKind(k), rows, col); err != nil {
				return nil, fmt.Errorf("quote_data: %w", err)
			}
		}
	}

	if err := s.addFiltered(TradePrice, ds.Trades(), schema.ColPrice); err != nil {
		return nil, fmt.Errorf("trade_data: %w", err)
	}

	sim, err := ds.FillSim()
	if err != nil {
		return nil, fmt.Errorf("fill_data_sim: %w", err)
	}
	simKinds := []StreamKind{SimAggrBuy, SimPassBuy, SimAggrSell, SimPassSell}
	for i, t := range sim.Tables() {
		if err := s.addFiltered(simKinds[i], t, schema.ColPrice); err != nil {
			return nil, fmt.Errorf("fill_data_sim: %w", err)
		}
	}

	prod, err := ds.FillProd()
	if err != nil {
		return nil, fmt.Errorf("fill_data_prod: %w", err)
	}
	prodKinds := []StreamKind{ProdAggrBuy, ProdPassBuy, ProdAggrSell, ProdPassSell}
	for i, t := range prod.Tables() {
		if err := s.addFiltered(prodKinds[i], t, schema.ColPrice); err != nil {
			return nil, fmt.Errorf("fill_data_prod: %w", err)
		}
	}

	orders, err := ds.Orders()
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	orderKinds := []StreamKind{NewOrder, NewOrderAck, CancelOrder, CancelOrderAck, RejectOrder}
	for i, t := range orders.Tables() {
		if err := s.addFiltered(orderKinds[i], t, schema.ColPrice); err != nil {
			return nil, fmt.Errorf("orders: %w", err)
		}
	}

	if err := s.addFiltered(ValuationTheo, ds.Valuations(), schema.ColTheoPrice); err != nil {
		return nil, fmt.Errorf("val_data: %w", err)
	}
	return s, nil
}

func (s *Slice) addFiltered(k StreamKind, t *table.Table, col string) error {
	if t.Empty() {
		return nil
	}
	rows, err := filterSymbol(t, s.Symbol)
	if err != nil {
		return err
	}
	return s.add(k, rows, col)
}

// add 写入一条流；过滤后为空的表不产生流。取值列的空单元格保留为 NaN（缺口）。
func (s *Slice) add(k StreamKind, rows *table.Table, col string) error {
	if rows.Empty() {
		return nil
	}
	x, err := rows.Float64s(schema.ColTimestamp)
	if err != nil {
		return fmt.Errorf("%s: %w", k.TimestampName(), err)
	}
	y, err := rows.Float64sOrNaN(col)
	if err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	s.streams[k] = &Stream{X: x, Y: y}
	return nil
}

func filterSymbol(t *table.Table, symbol string) (*table.Table, error) {
	syms, err := t.Strings(schema.ColSymbol)
	if err != nil {
		return nil, err
	}
	return t.Filter(func(r int) bool { return syms[r] == symbol }), nil
}
