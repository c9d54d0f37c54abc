package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"microstructure-plotter/schema"
	"microstructure-plotter/table"

	"github.com/shopspring/decimal"
)

// 生成一组可直接喂给 microplot 的示例 CSV：每个品种一条随机游走的 mid，
// 围绕它派生成交、模拟/生产成交、订单事件和估值。不连接任何外部数据源。
func main() {
	out := flag.String("out", "testdata", "输出目录")
	symbols := flag.String("symbols", "BTCUSDT,ETHUSDT", "逗号分隔的品种")
	ticks := flag.Int("ticks", 500, "每个品种的 quote 数量")
	stepMs := flag.Int("stepMs", 100, "quote 间隔（毫秒）")
	seed := flag.Int64("seed", 1, "随机种子")
	only := flag.String("categories", "", "只写出这些类别，逗号分隔（如 quote,orders）；默认全部")
	flag.Parse()

	categories, err := parseCategories(*only)
	if err != nil {
		log.Fatalf("%v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	g := newGenerator()
	start := int64(1700000000000000000)
	for i, sym := range strings.Split(*symbols, ",") {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		base := 100.0 * float64(i+1)
		g.symbol(rng, sym, start, int64(*stepMs)*1_000_000, *ticks, base)
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatalf("create %s: %v", *out, err)
	}
	for _, c := range categories {
		path := filepath.Join(*out, c.String()+".csv")
		if err := writeTable(path, g.tables[c]); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		fmt.Printf("%s rows=%d -> %s\n", c, g.tables[c].Len(), path)
	}
}

// parseCategories 解析 -categories；为空时返回全部类别。
func parseCategories(list string) ([]schema.Category, error) {
	if strings.TrimSpace(list) == "" {
		return schema.Categories(), nil
	}
	var out []schema.Category
	for _, name := range strings.Split(list, ",") {
		c, err := schema.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

type generator struct {
	tables map[schema.Category]*table.Table
}

func newGenerator() *generator {
	g := &generator{tables: make(map[schema.Category]*table.Table)}
	for _, c := range schema.Categories() {
		t, err := table.New(schema.RequiredColumns(c)...)
		if err != nil {
			log.Fatalf("new table %s: %v", c, err)
		}
		g.tables[c] = t
	}
	return g
}

// tick 价格按 0.01 取整
func tick(p float64) float64 {
	return decimal.NewFromFloat(p).Round(2).InexactFloat64()
}

func (g *generator) symbol(rng *rand.Rand, sym string, start, step int64, n int, mid float64) {
	for i := 0; i < n; i++ {
		ts := start + int64(i)*step + rng.Int63n(step/2+1)
		mid += rng.NormFloat64() * 0.05 // 简单高斯扰动
		half := 0.02 + rng.Float64()*0.05
		bid, ask := tick(mid-half), tick(mid+half)
		micro := tick(bid + (ask-bid)*rng.Float64())
		g.append(schema.Quote, ts, sym, bid, ask, micro)

		if i%3 == 0 {
			g.append(schema.Valuation, ts+1000, sym, tick(mid+rng.NormFloat64()*0.01))
		}
		if rng.Float64() < 0.3 {
			px := ask
			if rng.Intn(2) == 0 {
				px = bid
			}
			g.append(schema.Trade, ts+2000, sym, px)
		}
		if rng.Float64() < 0.15 {
			g.orderLifecycle(rng, ts+3000, sym, bid, ask)
		}
		if rng.Float64() < 0.1 {
			isBuy := rng.Intn(2) == 0
			px := ask
			if !isBuy {
				px = bid
			}
			g.append(schema.FillSim, ts+4000, sym, px, isBuy, rng.Intn(2) == 0)
			// 生产成交大多与模拟成交对应，价格略有滑点
			if rng.Float64() < 0.8 {
				g.append(schema.FillProd, ts+250_000, sym, tick(px+rng.NormFloat64()*0.01), isBuy, rng.Intn(2) == 0)
			}
		}
	}
}

// orderLifecycle 写出 new → new_ack → cancel → cancel_ack（或 new → reject）的一组订单事件。
// 每行恰好命中一个订单分区，可通过 -strict_orders 校验。
func (g *generator) orderLifecycle(rng *rand.Rand, ts int64, sym string, bid, ask float64) {
	px := bid
	if rng.Intn(2) == 0 {
		px = ask
	}
	// 列顺序：is_new, is_cancel, is_reject, is_ack
	g.append(schema.Orders, ts, sym, px, true, false, false, false)
	if rng.Float64() < 0.1 {
		g.append(schema.Orders, ts+50_000, sym, px, false, false, true, false)
		return
	}
	g.append(schema.Orders, ts+50_000, sym, px, true, false, false, true)
	if rng.Float64() < 0.5 {
		g.append(schema.Orders, ts+30_000_000, sym, px, false, true, false, false)
		g.append(schema.Orders, ts+30_050_000, sym, px, false, true, false, true)
	}
}

func (g *generator) append(c schema.Category, values ...any) {
	if err := g.tables[c].AppendRow(values...); err != nil {
		log.Fatalf("append %s: %v", c, err)
	}
}

func writeTable(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := table.WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
