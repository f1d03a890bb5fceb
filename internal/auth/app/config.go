package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/vaultguard/internal/auth/service"
	"github.com/aussiebroadwan/vaultguard/pkg/jwtx"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "VAULTGUARD_"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	JWTSecret string `koanf:"jwt_secret"` // Required: HS256 signing secret
	Issuer    string `koanf:"issuer"`     // Optional: iss claim (default: vaultguard)

	AccessTTL      time.Duration `koanf:"access_ttl"`       // default: 15m
	RefreshTTL     time.Duration `koanf:"refresh_ttl"`      // default: 7d
	ResetTTL       time.Duration `koanf:"reset_ttl"`        // default: 15m
	ResetSingleUse bool          `koanf:"reset_single_use"` // default: true
	RotateRefresh  bool          `koanf:"rotate_refresh"`   // default: false
	ResetDelivery  string        `koanf:"reset_delivery"`   // log or response (default: log)

	DatabaseDriver string `koanf:"database_driver"` // sqlite or postgres (default: sqlite)
	DatabaseURL    string `koanf:"database_url"`    // file path for sqlite, DSN for postgres
	PepperFile     string `koanf:"pepper_file"`     // default: ./pepper

	CookieName   string `koanf:"cookie_name"`   // default: vg_refresh
	CookieSecure bool   `koanf:"cookie_secure"` // default: true

	Env                  string        `koanf:"env"`                   // dev, staging, prod (default: dev)
	LogLevel             string        `koanf:"log_level"`             // debug, info, warn, error (default: info)
	LogFormat            string        `koanf:"log_format"`            // json, text (default: json)
	Port                 int           `koanf:"port"`                  // default: 8080
	ShutdownGracePeriod  time.Duration `koanf:"shutdown_grace_period"` // default: 10s
	HousekeepingInterval time.Duration `koanf:"housekeeping_interval"` // default: 1h
}

// Defaults returns the built-in configuration. JWTSecret has no default.
func Defaults() Config {
	svc := service.DefaultConfig()
	return Config{
		Issuer:               "vaultguard",
		AccessTTL:            svc.AccessTTL,
		RefreshTTL:           svc.RefreshTTL,
		ResetTTL:             svc.ResetTTL,
		ResetSingleUse:       svc.ResetSingleUse,
		RotateRefresh:        svc.RotateRefresh,
		ResetDelivery:        service.DeliveryLog,
		DatabaseDriver:       DriverSQLite,
		DatabaseURL:          "vaultguard.db",
		PepperFile:           "pepper",
		CookieName:           "vg_refresh",
		CookieSecure:         true,
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
	}
}

// defaultValues flattens Defaults into koanf keys.
func defaultValues() map[string]any {
	d := Defaults()
	return map[string]any{
		"jwt_secret":            d.JWTSecret,
		"issuer":                d.Issuer,
		"access_ttl":            d.AccessTTL,
		"refresh_ttl":           d.RefreshTTL,
		"reset_ttl":             d.ResetTTL,
		"reset_single_use":      d.ResetSingleUse,
		"rotate_refresh":        d.RotateRefresh,
		"reset_delivery":        d.ResetDelivery,
		"database_driver":       d.DatabaseDriver,
		"database_url":          d.DatabaseURL,
		"pepper_file":           d.PepperFile,
		"cookie_name":           d.CookieName,
		"cookie_secure":         d.CookieSecure,
		"env":                   d.Env,
		"log_level":             d.LogLevel,
		"log_format":            d.LogFormat,
		"port":                  d.Port,
		"shutdown_grace_period": d.ShutdownGracePeriod,
		"housekeeping_interval": d.HousekeepingInterval,
	}
}

// LoadConfig layers defaults, the optional YAML file at path, VAULTGUARD_*
// environment variables and finally any flag the user set explicitly.
// flags may be nil.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	for key, val := range defaultValues() {
		if err := k.Set(key, val); err != nil {
			return Config{}, fmt.Errorf("config: default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	for key := range defaultValues() {
		if val, ok := os.LookupEnv(EnvPrefix + strings.ToUpper(key)); ok {
			if err := k.Set(key, val); err != nil {
				return Config{}, fmt.Errorf("config: env %s: %w", key, err)
			}
		}
	}

	if flags != nil {
		known := defaultValues()
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := flagKey(f.Name)
			if _, ok := known[key]; !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("config: flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.ResetDelivery = strings.ToLower(strings.TrimSpace(cfg.ResetDelivery))
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))

	return cfg, nil
}

// flagKey maps a kebab-case flag name onto its config key.
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// Validate reports every problem at once. An empty secret surfaces as
// jwtx.ErrConfig.
func (c Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, jwtx.ErrConfig)
	}
	for name, ttl := range map[string]time.Duration{
		"access_ttl":  c.AccessTTL,
		"refresh_ttl": c.RefreshTTL,
		"reset_ttl":   c.ResetTTL,
	} {
		if ttl <= 0 {
			errs = append(errs, fmt.Errorf("config: %s must be positive", name))
		}
	}

	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("config: unknown database_driver %q", c.DatabaseDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("config: database_url is required"))
	}

	switch c.ResetDelivery {
	case service.DeliveryLog, service.DeliveryResponse:
	default:
		errs = append(errs, fmt.Errorf("config: unknown reset_delivery %q", c.ResetDelivery))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: port %d out of range", c.Port))
	}

	return errors.Join(errs...)
}

// ServiceConfig extracts the flow settings.
func (c Config) ServiceConfig() service.Config {
	return service.Config{
		AccessTTL:      c.AccessTTL,
		RefreshTTL:     c.RefreshTTL,
		ResetTTL:       c.ResetTTL,
		ResetSingleUse: c.ResetSingleUse,
		RotateRefresh:  c.RotateRefresh,
	}
}

// IsDev reports whether the service runs in the development environment.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}
