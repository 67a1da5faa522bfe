package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CollectorSettings holds configuration for the web text collector, including
// the HTTP user agent, request timeout and the interval for scheduled runs.
type CollectorSettings struct {
	UserAgent       string   `mapstructure:"user_agent" validate:"required"`
	TimeoutSeconds  int      `mapstructure:"timeout_seconds" validate:"required,min=1,max=300"`
	IntervalMinutes int      `mapstructure:"interval_minutes" validate:"omitempty,min=1"`
	Sources         []string `mapstructure:"sources" validate:"dive,url"`
}

// Validate checks that all fields in CollectorSettings are valid
func (s *CollectorSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for CollectorSettings: %w", err)
	}

	return nil
}
