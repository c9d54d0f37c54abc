package config

import "fmt"

// Validate ensures required fields are present.
func Validate(cfg AppConfig) error {
	if cfg.Inputs.Quote == "" {
		return ErrInvalid("inputs.quote is required")
	}
	if cfg.Output.HTML == "" && cfg.Output.Image == "" {
		return ErrInvalid("output.html or output.image is required")
	}
	if _, err := cfg.Dataset.Location(); err != nil {
		return ErrInvalid(fmt.Sprintf("dataset.time_zone %q: %v", cfg.Dataset.TimeZone, err))
	}
	return ValidateParams(cfg)
}
