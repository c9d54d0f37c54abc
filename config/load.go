package config

import (
	"fmt"
	"os"
	"time"

	"microstructure-plotter/infrastructure/logger"
	"microstructure-plotter/schema"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，如 MICROPLOT_INPUT_QUOTE、MICROPLOT_OUTPUT_HTML。
const EnvPrefix = "MICROPLOT_"

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Inputs  Inputs        `yaml:"inputs" envPrefix:"INPUT_"`
	Output  OutputConfig  `yaml:"output" envPrefix:"OUTPUT_"`
	Dataset DatasetConfig `yaml:"dataset" envPrefix:"DATASET_"`
	Log     logger.Config `yaml:"log" envPrefix:"LOG_"`
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
	Watch   WatchConfig   `yaml:"watch" envPrefix:"WATCH_"`
}

// Inputs 六类输入 CSV 的路径，只有 quote 必填。
type Inputs struct {
	Quote     string `yaml:"quote" env:"QUOTE"`
	Trade     string `yaml:"trade" env:"TRADE"`
	FillSim   string `yaml:"fill_sim" env:"FILL_SIM"`
	FillProd  string `yaml:"fill_prod" env:"FILL_PROD"`
	Orders    string `yaml:"orders" env:"ORDERS"`
	Valuation string `yaml:"valuation" env:"VALUATION"`
}

// OutputConfig 输出文件与图面参数。
type OutputConfig struct {
	HTML        string `yaml:"html" env:"HTML"`
	Image       string `yaml:"image" env:"IMAGE"` // .png 或 .svg，空表示不输出
	Title       string `yaml:"title" env:"TITLE"`
	Width       int    `yaml:"width" env:"WIDTH"`               // 像素，0 为自适应
	ChartHeight int    `yaml:"chart_height" env:"CHART_HEIGHT"` // 每张子图高度（像素）
	ShowLegend  bool   `yaml:"show_legend" env:"SHOW_LEGEND"`
	PlotlyURL   string `yaml:"plotly_url" env:"PLOTLY_URL"`
}

// DatasetConfig 数据校验与时间轴参数。
type DatasetConfig struct {
	StrictOrderFlags bool   `yaml:"strict_order_flags" env:"STRICT_ORDER_FLAGS"`
	TimeZone         string `yaml:"time_zone" env:"TIME_ZONE"` // 刻度标签时区，IANA 名称
	MaxTicks         int    `yaml:"max_ticks" env:"MAX_TICKS"`
}

// MetricsConfig 指标导出。Textfile 为空时不写。
type MetricsConfig struct {
	Textfile string `yaml:"textfile" env:"TEXTFILE"`
}

// WatchConfig 输入文件变化后自动重绘。
type WatchConfig struct {
	Enabled      bool          `yaml:"enabled" env:"ENABLED"`
	Cooldown     time.Duration `yaml:"cooldown" env:"COOLDOWN"`
	UsePolling   bool          `yaml:"use_polling" env:"USE_POLLING"`
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
}

// Default 返回默认配置。
func Default() AppConfig {
	return AppConfig{
		Output: OutputConfig{
			HTML:        "microplot.html",
			Title:       "Microstructure Plotter",
			Width:       1200,
			ChartHeight: 300,
		},
		Dataset: DatasetConfig{
			TimeZone: "UTC",
			MaxTicks: 8,
		},
		Log: logger.DefaultConfig(),
		Watch: WatchConfig{
			Cooldown:     500 * time.Millisecond,
			PollInterval: 2 * time.Second,
		},
	}
}

// Path 返回类别对应的输入路径。
func (in Inputs) Path(c schema.Category) string {
	switch c {
	case schema.Quote:
		return in.Quote
	case schema.Trade:
		return in.Trade
	case schema.FillSim:
		return in.FillSim
	case schema.FillProd:
		return in.FillProd
	case schema.Orders:
		return in.Orders
	case schema.Valuation:
		return in.Valuation
	}
	return ""
}

// SetPath 设置类别对应的输入路径，未知类别忽略。
func (in *Inputs) SetPath(c schema.Category, path string) {
	switch c {
	case schema.Quote:
		in.Quote = path
	case schema.Trade:
		in.Trade = path
	case schema.FillSim:
		in.FillSim = path
	case schema.FillProd:
		in.FillProd = path
	case schema.Orders:
		in.Orders = path
	case schema.Valuation:
		in.Valuation = path
	}
}

// Paths 按类别顺序返回所有已配置的路径。
func (in Inputs) Paths() []string {
	var out []string
	for _, c := range schema.Categories() {
		if p := in.Path(c); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Location 解析刻度时区。
func (d DatasetConfig) Location() (*time.Location, error) {
	if d.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(d.TimeZone)
}

// Read 在默认配置之上读取 YAML，不做校验。path 为空时返回默认配置。
func Read(path string) (AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnvOverrides 用 MICROPLOT_* 环境变量覆盖已设置的字段，未设置的变量不影响原值。
func ApplyEnvOverrides(cfg *AppConfig) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadWithEnvOverrides loads config then overrides fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, Validate(cfg)
}
