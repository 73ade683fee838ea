package toml

import (
	"fmt"
	"time"
)

const currentSchemaVersion = 1

// Config is the effective configuration after file, environment and
// defaults are merged.
type Config struct {
	Version  int            `mapstructure:"version"`
	Username string         `mapstructure:"username"`
	LogLevel string         `mapstructure:"log_level" validate:"oneof=trace debug info warn error off"`
	Portal   PortalConfig   `mapstructure:"portal"`
	Features FeaturesConfig `mapstructure:"features"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Vendors  VendorsConfig  `mapstructure:"vendors"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
}

type PortalConfig struct {
	LoginURL       string        `mapstructure:"login_url" validate:"required,url"`
	LandingURL     string        `mapstructure:"landing_url" validate:"required,url"`
	APIBase        string        `mapstructure:"api_base" validate:"required,url"`
	StartVersion   int           `mapstructure:"start_version" validate:"min=1"`
	MaxProbes      int           `mapstructure:"max_probes" validate:"min=1,max=100"`
	MaxLoginSteps  int           `mapstructure:"max_login_steps" validate:"min=1,max=50"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

type FeaturesConfig struct {
	SchoolSchedule bool `mapstructure:"school_schedule"`
	WeekPlans      bool `mapstructure:"week_plans"`
	ParseEasyIQ    bool `mapstructure:"parse_easyiq"`
}

type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type CalendarConfig struct {
	SnapshotPath string `mapstructure:"snapshot_path" validate:"required"`
}

type VendorsConfig struct {
	MinUddannelse string `mapstructure:"minuddannelse" validate:"required,url"`
	EasyIQ        string `mapstructure:"easyiq" validate:"required,url"`
	Meebook       string `mapstructure:"meebook" validate:"required,url"`
	Systematic    string `mapstructure:"systematic" validate:"required,url"`
}

type SecretsConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = currentSchemaVersion
	}
}

func (c Config) validateVersion() error {
	if c.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", c.Version, currentSchemaVersion)
	}

	return nil
}

// fileSchema is the on-disk shape. Durations are kept as strings so the
// file stays readable.
type fileSchema struct {
	Version  int            `toml:"version"`
	Username string         `toml:"username"`
	LogLevel string         `toml:"log_level"`
	Portal   portalSchema   `toml:"portal"`
	Features featuresSchema `toml:"features"`
	Refresh  refreshSchema  `toml:"refresh"`
	Calendar calendarSchema `toml:"calendar"`
	Vendors  vendorsSchema  `toml:"vendors"`
	Secrets  secretsSchema  `toml:"secrets"`
}

type portalSchema struct {
	LoginURL       string `toml:"login_url"`
	LandingURL     string `toml:"landing_url"`
	APIBase        string `toml:"api_base"`
	StartVersion   int    `toml:"start_version"`
	MaxProbes      int    `toml:"max_probes"`
	MaxLoginSteps  int    `toml:"max_login_steps"`
	RequestTimeout string `toml:"request_timeout"`
}

type featuresSchema struct {
	SchoolSchedule bool `toml:"school_schedule"`
	WeekPlans      bool `toml:"week_plans"`
	ParseEasyIQ    bool `toml:"parse_easyiq"`
}

type refreshSchema struct {
	Interval string `toml:"interval"`
	Timeout  string `toml:"timeout"`
}

type calendarSchema struct {
	SnapshotPath string `toml:"snapshot_path"`
}

type vendorsSchema struct {
	MinUddannelse string `toml:"minuddannelse"`
	EasyIQ        string `toml:"easyiq"`
	Meebook       string `toml:"meebook"`
	Systematic    string `toml:"systematic"`
}

type secretsSchema struct {
	Dir string `toml:"dir"`
}

func toSchema(c Config) fileSchema {
	c.applyDefaults()
	return fileSchema{
		Version:  c.Version,
		Username: c.Username,
		LogLevel: c.LogLevel,
		Portal: portalSchema{
			LoginURL:       c.Portal.LoginURL,
			LandingURL:     c.Portal.LandingURL,
			APIBase:        c.Portal.APIBase,
			StartVersion:   c.Portal.StartVersion,
			MaxProbes:      c.Portal.MaxProbes,
			MaxLoginSteps:  c.Portal.MaxLoginSteps,
			RequestTimeout: c.Portal.RequestTimeout.String(),
		},
		Features: featuresSchema(c.Features),
		Refresh: refreshSchema{
			Interval: c.Refresh.Interval.String(),
			Timeout:  c.Refresh.Timeout.String(),
		},
		Calendar: calendarSchema(c.Calendar),
		Vendors:  vendorsSchema(c.Vendors),
		Secrets:  secretsSchema(c.Secrets),
	}
}
