package config

// ValidateParams 额外验证数值参数与日志配置。
func ValidateParams(cfg AppConfig) error {
	if cfg.Output.Width < 0 {
		return ErrInvalid("output.width must be >= 0")
	}
	if cfg.Output.ChartHeight < 0 {
		return ErrInvalid("output.chart_height must be >= 0")
	}
	if cfg.Dataset.MaxTicks < 0 {
		return ErrInvalid("dataset.max_ticks must be >= 0")
	}
	if cfg.Watch.Cooldown < 0 {
		return ErrInvalid("watch.cooldown must be >= 0")
	}
	if cfg.Watch.PollInterval < 0 {
		return ErrInvalid("watch.poll_interval must be >= 0")
	}
	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return ErrInvalid("log.level must be one of debug/info/warn/error")
	}
	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		return ErrInvalid("log.format must be json or console")
	}
	return nil
}

// ErrInvalid 用于参数验证错误。
type ErrInvalid string

func (e ErrInvalid) Error() string { return string(e) }
