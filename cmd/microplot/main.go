package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"microstructure-plotter/config"
	"microstructure-plotter/internal/app"
	"microstructure-plotter/schema"

	"go.uber.org/zap"
)

// 读取六类微观结构 CSV，按品种输出横轴联动的子图。
// 只有 -quote_data_file 必填；其余输入缺省时对应数据流不绘制。
func main() {
	cfgPath := flag.String("config", "", "配置文件路径（可选）")
	quote := flag.String("quote_data_file", "", "quote 数据 CSV（必填）")
	trade := flag.String("trade_data_file", "", "trade 数据 CSV")
	fillSim := flag.String("fill_data_sim_file", "", "模拟成交 CSV")
	fillProd := flag.String("fill_data_prod_file", "", "生产成交 CSV")
	orders := flag.String("orders_data_file", "", "订单事件 CSV")
	valuation := flag.String("valuation_data_file", "", "估值 CSV")
	out := flag.String("out", "", "HTML 输出路径（默认 microplot.html）")
	image := flag.String("image", "", "静态图输出路径（.png 或 .svg）")
	legend := flag.Bool("legend", false, "显示图例")
	watch := flag.Bool("watch", false, "输入文件变化时自动重绘")
	strict := flag.Bool("strict_orders", false, "拒绝订单标志不自洽的行")
	metricsFile := flag.String("metrics_textfile", "", "Prometheus textfile 输出路径")
	flag.Parse()

	cfg, err := config.Read(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if err := config.ApplyEnvOverrides(&cfg); err != nil {
		log.Fatalf("加载环境变量失败: %v", err)
	}

	// 命令行参数优先于配置文件与环境变量
	for c, v := range map[schema.Category]string{
		schema.Quote:     *quote,
		schema.Trade:     *trade,
		schema.FillSim:   *fillSim,
		schema.FillProd:  *fillProd,
		schema.Orders:    *orders,
		schema.Valuation: *valuation,
	} {
		if v != "" {
			cfg.Inputs.SetPath(c, v)
		}
	}
	if *out != "" {
		cfg.Output.HTML = *out
	}
	if *image != "" {
		cfg.Output.Image = *image
	}
	if *metricsFile != "" {
		cfg.Metrics.Textfile = *metricsFile
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "legend":
			cfg.Output.ShowLegend = *legend
		case "watch":
			cfg.Watch.Enabled = *watch
		case "strict_orders":
			cfg.Dataset.StrictOrderFlags = *strict
		}
	})

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	a := app.New(cfg)
	if err := a.Build(); err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer a.Close()
	lg := a.Logger()

	if !cfg.Watch.Enabled {
		c, err := a.RunOnce()
		if err != nil {
			lg.LogError(err, map[string]interface{}{"action": "run"})
			a.Close()
			os.Exit(1)
		}
		lg.Info("done", zap.Strings("symbols", c.Symbols()), zap.String("html", cfg.Output.HTML))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.Watch(ctx); err != nil {
		lg.LogError(err, map[string]interface{}{"action": "watch"})
		a.Close()
		os.Exit(1)
	}
	lg.Info("watch stopped")
}
