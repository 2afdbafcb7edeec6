package config

import (
	"errors"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	LLM      LLMConfig
	Probe    ProbeConfig
	Capture  CaptureConfig
}

// LLMConfig holds the endpoint configuration
type LLMConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// ProbeConfig holds the probe request configuration
type ProbeConfig struct {
	Prompt   string `mapstructure:"prompt"`
	Blocking bool   `mapstructure:"blocking"`
}

// CaptureConfig holds the frame capture configuration
type CaptureConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads the configuration from config.yaml in the working directory, or
// from the file named by CONFIG_PATH. A missing file is not an error: every
// key has a default so the tool runs against a local proxy with no setup.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("llm.base_url", "http://127.0.0.1:3000/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-3-pro-high")
	v.SetDefault("probe.prompt", "What is 2+2? Think step by step.")
	v.SetDefault("probe.blocking", false)
	v.SetDefault("capture.enabled", false)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
