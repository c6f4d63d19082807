package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Platform PlatformConfig `mapstructure:"platform" validate:"required"`
	Study    StudyConfig    `mapstructure:"study"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// StaticDir is served under /static when set.
	StaticDir              string `mapstructure:"static_dir"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// PlatformConfig selects and configures the learning platform backend.
type PlatformConfig struct {
	// Mode is either "http" (remote gateway) or "fixture" (YAML catalog).
	Mode                    string  `mapstructure:"mode"                      validate:"required,oneof=http fixture"`
	BaseURL                 string  `mapstructure:"base_url"                  validate:"omitempty,url"`
	FixturePath             string  `mapstructure:"fixture_path"              validate:"required_if=Mode fixture"`
	RequestTimeoutSeconds   int     `mapstructure:"request_timeout_seconds"   validate:"gt=0"`
	ProgressIntervalSeconds int     `mapstructure:"progress_interval_seconds" validate:"gt=0"`
	FixtureTimeScale        float64 `mapstructure:"fixture_time_scale"        validate:"gte=0"`
	// RequestsPerSecond caps gateway requests per identity; 0 disables the cap.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	RequestBurst      int     `mapstructure:"request_burst"       validate:"gte=0"`
}

// StudyConfig contains settings for the study job orchestrator.
type StudyConfig struct {
	// FingerprintKey keys the credential hash. Leaving it empty still yields
	// stable fingerprints, but anyone can recompute them from a credential pair.
	FingerprintKey string `mapstructure:"fingerprint_key" validate:"omitempty,min=16,max=64"`
	HistorySize    int    `mapstructure:"history_size"    validate:"gt=0"`
}
