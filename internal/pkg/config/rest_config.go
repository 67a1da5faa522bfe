package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ModelSettings points the REST API at a trained model checkpoint and its
// tokenizer file.
type ModelSettings struct {
	CheckpointPath string `mapstructure:"checkpoint_path" validate:"required"`
	TokenizerPath  string `mapstructure:"tokenizer_path" validate:"required"`
}

// Validate checks that all fields in ModelSettings are valid
func (s *ModelSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for ModelSettings: %w", err)
	}

	return nil
}

// RestConfig aggregates all settings required by the REST API application.
type RestConfig struct {
	Port      string            `mapstructure:"port" validate:"required,numeric"`
	Database  DatabaseSettings  `mapstructure:"database"`
	Logger    LoggerSettings    `mapstructure:"logger"`
	Model     ModelSettings     `mapstructure:"model"`
	Collector CollectorSettings `mapstructure:"collector"`
}

// Validate checks the top-level fields and all nested settings.
func (c *RestConfig) Validate() error {
	validate := validator.New()

	if err := validate.StructExcept(c, "Database", "Logger", "Model", "Collector"); err != nil {
		return fmt.Errorf("validation failed for RestConfig: %w", err)
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if err := c.Collector.Validate(); err != nil {
		return err
	}

	return nil
}

// InitializeRestConfig loads the REST API configuration from a YAML file,
// applying environment variable overrides, and validates it.
func InitializeRestConfig(configPath string) (*RestConfig, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("STORY_GEN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg RestConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
