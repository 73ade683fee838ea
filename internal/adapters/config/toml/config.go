package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/aula-cli/internal/adapters/atomicfile"
	"github.com/bnema/aula-cli/internal/adapters/portal"
	"github.com/bnema/aula-cli/internal/adapters/widgets/easyiq"
	"github.com/bnema/aula-cli/internal/adapters/widgets/huskelisten"
	"github.com/bnema/aula-cli/internal/adapters/widgets/meebook"
	"github.com/bnema/aula-cli/internal/adapters/widgets/minuddannelse"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	configDir       = ".config/aula"
	envPrefix       = "AULA"
	tempFilePattern = ".config-*.toml.tmp"
)

var ErrConfigExists = errors.New("config file already exists")

// Dir is $HOME/.config/aula.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir), nil
}

// Default returns the configuration used when no file is present.
func Default() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Version:  currentSchemaVersion,
		LogLevel: "info",
		Portal: PortalConfig{
			LoginURL:       portal.DefaultLoginURL,
			LandingURL:     portal.DefaultLandingURL,
			APIBase:        portal.DefaultAPIBase,
			StartVersion:   portal.DefaultStartVersion,
			MaxProbes:      portal.DefaultMaxProbes,
			MaxLoginSteps:  portal.DefaultMaxLoginSteps,
			RequestTimeout: 30 * time.Second,
		},
		Features: FeaturesConfig{SchoolSchedule: true, WeekPlans: true},
		Refresh: RefreshConfig{
			Interval: 5 * time.Minute,
			Timeout:  4 * time.Minute,
		},
		Calendar: CalendarConfig{SnapshotPath: filepath.Join(dir, "skoleskema.json")},
		Vendors: VendorsConfig{
			MinUddannelse: minuddannelse.DefaultBaseURL,
			EasyIQ:        easyiq.DefaultBaseURL,
			Meebook:       meebook.DefaultBaseURL,
			Systematic:    huskelisten.DefaultBaseURL,
		},
		Secrets: SecretsConfig{Dir: filepath.Join(dir, "secrets")},
	}, nil
}

// LoadEnvFiles reads KEY=value files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat env file: %w", err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
}

// Load merges defaults, the config file and AULA_* variables. An explicit
// path must exist; the default location may be absent. It returns the file
// actually read, or "" when none was.
func Load(v *viper.Viper, explicitPath string) (Config, string, error) {
	if v == nil {
		v = viper.New()
	}

	defaults, err := Default()
	if err != nil {
		return Config{}, "", err
	}
	setDefaults(v, defaults)

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		dir, err := Dir()
		if err != nil {
			return Config{}, "", err
		}
		v.SetConfigName(configName)
		v.AddConfigPath(dir)
	}
	v.SetConfigType(configType)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &configNotFound) {
			return Config{}, "", fmt.Errorf("read config file: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validateVersion(); err != nil {
		return Config{}, "", err
	}
	cfg.applyDefaults()
	cfg.Username = strings.TrimSpace(cfg.Username)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, "", fmt.Errorf("invalid config: %w", err)
	}

	return cfg, used, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("username", d.Username)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("portal.login_url", d.Portal.LoginURL)
	v.SetDefault("portal.landing_url", d.Portal.LandingURL)
	v.SetDefault("portal.api_base", d.Portal.APIBase)
	v.SetDefault("portal.start_version", d.Portal.StartVersion)
	v.SetDefault("portal.max_probes", d.Portal.MaxProbes)
	v.SetDefault("portal.max_login_steps", d.Portal.MaxLoginSteps)
	v.SetDefault("portal.request_timeout", d.Portal.RequestTimeout)
	v.SetDefault("features.school_schedule", d.Features.SchoolSchedule)
	v.SetDefault("features.week_plans", d.Features.WeekPlans)
	v.SetDefault("features.parse_easyiq", d.Features.ParseEasyIQ)
	v.SetDefault("refresh.interval", d.Refresh.Interval)
	v.SetDefault("refresh.timeout", d.Refresh.Timeout)
	v.SetDefault("calendar.snapshot_path", d.Calendar.SnapshotPath)
	v.SetDefault("vendors.minuddannelse", d.Vendors.MinUddannelse)
	v.SetDefault("vendors.easyiq", d.Vendors.EasyIQ)
	v.SetDefault("vendors.meebook", d.Vendors.Meebook)
	v.SetDefault("vendors.systematic", d.Vendors.Systematic)
	v.SetDefault("secrets.dir", d.Secrets.Dir)
}

// Encode renders cfg in the on-disk TOML shape.
func Encode(cfg Config) ([]byte, error) {
	data, err := toml.Marshal(toSchema(cfg))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// Write stores cfg at path. An existing file is only replaced with force.
func Write(path string, cfg Config, force bool) error {
	path, err := atomicfile.Normalize(path)
	if err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
	}

	data, err := Encode(cfg)
	if err != nil {
		return err
	}

	mu := atomicfile.LockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	if err := atomicfile.Write(path, data, tempFilePattern); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// DefaultPath is where Write puts the file when no --config is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+"."+configType), nil
}
