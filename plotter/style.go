package plotter

import (
	"fmt"
	"image/color"
)

// StreamKind 枚举每张图可能绘制的数据流。绘制时按枚举顺序遍历，缺失的流直接跳过。
type StreamKind int

const (
	QuoteBid StreamKind = iota
	QuoteAsk
	QuoteMicro
	TradePrice
	SimAggrBuy
	SimPassBuy
	SimAggrSell
	SimPassSell
	ProdAggrBuy
	ProdPassBuy
	ProdAggrSell
	ProdPassSell
	NewOrder
	NewOrderAck
	CancelOrder
	CancelOrderAck
	RejectOrder
	ValuationTheo

	numStreamKinds
)

// SeriesType 线或散点。
type SeriesType int

const (
	Line SeriesType = iota
	Scatter
)

// Marker 散点形状。
type Marker int

const (
	MarkerNone Marker = iota
	MarkerCircle
	MarkerTriangle
	MarkerDiamond
)

func (m Marker) String() string {
	switch m {
	case MarkerCircle:
		return "circle"
	case MarkerTriangle:
		return "triangle"
	case MarkerDiamond:
		return "diamond"
	default:
		return "none"
	}
}

// RenderStyle 连线方式。ConnectedHold 为阶梯保持（报价在下一次更新前保持不变）。
type RenderStyle int

const (
	ConnectedHold RenderStyle = iota
	Hold
)

// Style 一条序列的外观。
type Style struct {
	Type       SeriesType
	Color      string
	LineWidth  float64
	Marker     Marker
	MarkerSize float64
	Render     RenderStyle
}

type streamInfo struct {
	prefix string
	value  string
	style  Style
}

func lineStyle(c string, width float64) Style {
	return Style{Type: Line, Color: c, LineWidth: width, Render: ConnectedHold}
}

func markerStyle(c string, m Marker, size float64) Style {
	return Style{Type: Scatter, Color: c, Marker: m, MarkerSize: size, Render: Hold}
}

// 成交：模拟买蓝/卖金，生产买紫/卖绿；三角为主动，圆为被动。订单一律菱形。
var streams = [numStreamKinds]streamInfo{
	QuoteBid:       {"quote", "bid_price", lineStyle("black", 4)},
	QuoteAsk:       {"quote", "ask_price", lineStyle("black", 4)},
	QuoteMicro:     {"quote", "micro_price", lineStyle("blue", 1)},
	TradePrice:     {"trade", "price", markerStyle("red", MarkerCircle, 8)},
	SimAggrBuy:     {"sim_aggr_buy", "price", markerStyle("blue", MarkerTriangle, 12)},
	SimPassBuy:     {"sim_pass_buy", "price", markerStyle("blue", MarkerCircle, 12)},
	SimAggrSell:    {"sim_aggr_sell", "price", markerStyle("gold", MarkerTriangle, 12)},
	SimPassSell:    {"sim_pass_sell", "price", markerStyle("gold", MarkerCircle, 12)},
	ProdAggrBuy:    {"prod_aggr_buy", "price", markerStyle("purple", MarkerTriangle, 12)},
	ProdPassBuy:    {"prod_pass_buy", "price", markerStyle("purple", MarkerCircle, 12)},
	ProdAggrSell:   {"prod_aggr_sell", "price", markerStyle("green", MarkerTriangle, 12)},
	ProdPassSell:   {"prod_pass_sell", "price", markerStyle("green", MarkerCircle, 12)},
	NewOrder:       {"new_order", "price", markerStyle("green", MarkerDiamond, 6)},
	NewOrderAck:    {"new_order_ack", "price", markerStyle("lightgreen", MarkerDiamond, 6)},
	CancelOrder:    {"cancel_order", "price", markerStyle("red", MarkerDiamond, 6)},
	CancelOrderAck: {"cancel_order_ack", "price", markerStyle("pink", MarkerDiamond, 6)},
	RejectOrder:    {"reject_orders", "price", markerStyle("black", MarkerDiamond, 6)},
	ValuationTheo:  {"val_data", "price", lineStyle("green", 1)},
}

// StreamKinds 按绘制顺序返回全部流类型。
func StreamKinds() []StreamKind {
	out := make([]StreamKind, 0, numStreamKinds)
	for k := StreamKind(0); k < numStreamKinds; k++ {
		out = append(out, k)
	}
	return out
}

func (k StreamKind) valid() bool { return k >= 0 && k < numStreamKinds }

// String 返回值流名，如 quote_bid_price、sim_aggr_buy_price。
func (k StreamKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("stream(%d)", int(k))
	}
	return streams[k].prefix + "_" + streams[k].value
}

// TimestampName 返回对应的时间流名，如 sim_aggr_buy_timestamp。
func (k StreamKind) TimestampName() string {
	if !k.valid() {
		return fmt.Sprintf("stream(%d)_timestamp", int(k))
	}
	return streams[k].prefix + "_timestamp"
}

// Style 返回该流的默认外观。
func (k StreamKind) Style() Style {
	if !k.valid() {
		return Style{}
	}
	return streams[k].style
}

var palette = map[string]color.RGBA{
	"black":      {R: 0, G: 0, B: 0, A: 255},
	"blue":       {R: 0, G: 0, B: 255, A: 255},
	"red":        {R: 255, G: 0, B: 0, A: 255},
	"gold":       {R: 255, G: 215, B: 0, A: 255},
	"purple":     {R: 128, G: 0, B: 128, A: 255},
	"green":      {R: 0, G: 128, B: 0, A: 255},
	"lightgreen": {R: 144, G: 238, B: 144, A: 255},
	"pink":       {R: 255, G: 192, B: 203, A: 255},
	"lightgray":  {R: 211, G: 211, B: 211, A: 255},
}

// ColorRGBA 把样式中的颜色名解析为 RGBA，未知名称回退为黑色。
func ColorRGBA(name string) color.RGBA {
	if c, ok := palette[name]; ok {
		return c
	}
	return palette["black"]
}
