package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix shared by every environment variable the service reads.
const EnvPrefix = "STUDY"

// configFileEnv names an explicit config file, overriding the working-directory lookup.
const configFileEnv = "STUDY_CONFIG_FILE"

// keys lists every configuration key so each one can be bound to its
// environment variable explicitly. AutomaticEnv alone does not make
// Unmarshal see keys that were never set elsewhere.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.static_dir",
	"server.shutdown_timeout_seconds",
	"platform.mode",
	"platform.base_url",
	"platform.fixture_path",
	"platform.request_timeout_seconds",
	"platform.progress_interval_seconds",
	"platform.fixture_time_scale",
	"platform.requests_per_second",
	"platform.request_burst",
	"study.fingerprint_key",
	"study.history_size",
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	if path := os.Getenv(configFileEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config.yaml is fine; anything else is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range keys {
		envVar := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if cfg.Platform.Mode == "http" && cfg.Platform.BaseURL == "" {
		return nil, fmt.Errorf("configuration validation failed: platform.base_url is required in http mode")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("platform.mode", "fixture")
	v.SetDefault("platform.base_url", "")
	v.SetDefault("platform.fixture_path", "")
	v.SetDefault("platform.request_timeout_seconds", 15)
	v.SetDefault("platform.progress_interval_seconds", 30)
	v.SetDefault("platform.fixture_time_scale", 1.0)
	v.SetDefault("platform.requests_per_second", 2.0)
	v.SetDefault("platform.request_burst", 4)
	v.SetDefault("study.fingerprint_key", "")
	v.SetDefault("study.history_size", 50)
}
