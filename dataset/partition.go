package dataset

import (
	"fmt"

	"microstructure-plotter/schema"
	"microstructure-plotter/table"
)

// FillPartition 按 is_buy × is_aggressive 拆分的成交。源表为空时四个字段均为 nil。
type FillPartition struct {
	BuyAggressive  *table.Table
	BuyPassive     *table.Table
	SellAggressive *table.Table
	SellPassive    *table.Table
}

// Tables 按 [买主动, 买被动, 卖主动, 卖被动] 顺序返回。
func (p FillPartition) Tables() []*table.Table {
	return []*table.Table{p.BuyAggressive, p.BuyPassive, p.SellAggressive, p.SellPassive}
}

// OrderKind 订单事件分区。
type OrderKind int

const (
	OrderNew OrderKind = iota
	OrderNewAck
	OrderCancel
	OrderCancelAck
	OrderReject
)

func (k OrderKind) String() string {
	switch k {
	case OrderNew:
		return "new"
	case OrderNewAck:
		return "new_ack"
	case OrderCancel:
		return "cancel"
	case OrderCancelAck:
		return "cancel_ack"
	case OrderReject:
		return "reject"
	default:
		return fmt.Sprintf("order_kind(%d)", int(k))
	}
}

// OrderPartition 订单事件的五个分区。分区之间不保证互斥或完备，
// 取决于输入标志是否自洽（见 Dataset.StrictOrderFlags）。
type OrderPartition struct {
	New       *table.Table
	NewAck    *table.Table
	Cancel    *table.Table
	CancelAck *table.Table
	Reject    *table.Table
}

// Tables 按 [new, new_ack, cancel, cancel_ack, reject] 顺序返回。
func (p OrderPartition) Tables() []*table.Table {
	return []*table.Table{p.New, p.NewAck, p.Cancel, p.CancelAck, p.Reject}
}

// FillSim 返回模拟成交的四路分区。
func (d *Dataset) FillSim() (FillPartition, error) {
	return partitionFills(d.Get(schema.FillSim))
}

// FillProd 返回生产成交的四路分区。
func (d *Dataset) FillProd() (FillPartition, error) {
	return partitionFills(d.Get(schema.FillProd))
}

// Orders 返回订单事件的五路分区。
func (d *Dataset) Orders() (OrderPartition, error) {
	t := d.Get(schema.Orders)
	if t == nil {
		return OrderPartition{}, nil
	}
	f, err := readOrderFlags(t)
	if err != nil {
		return OrderPartition{}, err
	}
	pick := func(k OrderKind) *table.Table {
		return t.Filter(func(r int) bool { return f.matches(r, k) })
	}
	return OrderPartition{
		New:       pick(OrderNew),
		NewAck:    pick(OrderNewAck),
		Cancel:    pick(OrderCancel),
		CancelAck: pick(OrderCancelAck),
		Reject:    pick(OrderReject),
	}, nil
}

func partitionFills(t *table.Table) (FillPartition, error) {
	if t == nil {
		return FillPartition{}, nil
	}
	buy, err := t.Bools(schema.ColIsBuy)
	if err != nil {
		return FillPartition{}, fmt.Errorf("fills: %w", err)
	}
	aggr, err := t.Bools(schema.ColIsAggressive)
	if err != nil {
		return FillPartition{}, fmt.Errorf("fills: %w", err)
	}
	pick := func(isBuy, isAggr bool) *table.Table {
		return t.Filter(func(r int) bool { return buy[r] == isBuy && aggr[r] == isAggr })
	}
	return FillPartition{
		BuyAggressive:  pick(true, true),
		BuyPassive:     pick(true, false),
		SellAggressive: pick(false, true),
		SellPassive:    pick(false, false),
	}, nil
}

type orderFlags struct {
	isNew, isCancel, isReject, isAck []bool
}

func readOrderFlags(t *table.Table) (orderFlags, error) {
	var f orderFlags
	var err error
	if f.isNew, err = t.Bools(schema.ColIsNew); err != nil {
		return f, fmt.Errorf("orders: %w", err)
	}
	if f.isCancel, err = t.Bools(schema.ColIsCancel); err != nil {
		return f, fmt.Errorf("orders: %w", err)
	}
	if f.isReject, err = t.Bools(schema.ColIsReject); err != nil {
		return f, fmt.Errorf("orders: %w", err)
	}
	if f.isAck, err = t.Bools(schema.ColIsAck); err != nil {
		return f, fmt.Errorf("orders: %w", err)
	}
	return f, nil
}

func (f orderFlags) matches(r int, k OrderKind) bool {
	switch k {
	case OrderNew:
		return f.isNew[r] && !f.isAck[r]
	case OrderNewAck:
		return f.isNew[r] && f.isAck[r]
	case OrderCancel:
		return f.isCancel[r] && !f.isAck[r]
	case OrderCancelAck:
		return f.isCancel[r] && f.isAck[r]
	case OrderReject:
		return f.isReject[r]
	}
	return false
}

// checkOrderFlags 要求每行恰好命中一个订单分区。
func checkOrderFlags(t *table.Table) error {
	f, err := readOrderFlags(t)
	if err != nil {
		return err
	}
	kinds := []OrderKind{OrderNew, OrderNewAck, OrderCancel, OrderCancelAck, OrderReject}
	for r := 0; r < t.Len(); r++ {
		var hits []OrderKind
		for _, k := range kinds {
			if f.matches(r, k) {
				hits = append(hits, k)
			}
		}
		if len(hits) != 1 {
			return &OrderFlagError{Row: r, Matches: hits}
		}
	}
	return nil
}
