package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment variable the app reads.
const EnvPrefix = "STAFF_"

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// LogFile redirects log output to a file; empty means stderr.
	LogFile string `koanf:"log_file"`

	// APIURL is the base URL of the employee REST backend.
	APIURL string `koanf:"api_url" validate:"required,api_base"`

	APITimeout time.Duration `koanf:"api_timeout" validate:"gt=0s,lte=5m"`
	APIRetries int           `koanf:"api_retries" validate:"gte=1,lte=10"`

	// SalaryStep is the amount one raise or lower changes a salary by.
	SalaryStep int `koanf:"salary_step" validate:"gte=1"`

	CacheSize uint `koanf:"cache_size" validate:"required,gte=1"`

	// RosterFile, when set, replaces the REST backend with a local
	// YAML, JSON or TOML roster.
	RosterFile string `koanf:"roster_file" validate:"omitempty,file"`

	// DenylistDir holds *.txt lists of common passwords. Empty disables the denylist.
	DenylistDir       string  `koanf:"denylist_dir" validate:"omitempty,dir"`
	DenylistDB        string  `koanf:"denylist_db" validate:"required"`
	DenylistCacheSize int     `koanf:"denylist_cache_size" validate:"gte=0"`
	DenylistFPRate    float64 `koanf:"denylist_fp_rate" validate:"gt=0,lt=1"`
}

// DenylistEnabled reports whether a denylist directory is configured.
func (c *AppConfig) DenylistEnabled() bool {
	return c.DenylistDir != ""
}

// DEFAULT_APP_CONFIG defines the default application configuration settings.
// It points at the public demo backend and leaves the denylist disabled.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:               "prod",
	LogLevel:          "info",
	LogFile:           "",
	APIURL:            "http://dummy.restapiexample.com/api/v1/",
	APITimeout:        10 * time.Second,
	APIRetries:        3,
	SalaryStep:        20,
	CacheSize:         1000,
	RosterFile:        "",
	DenylistDir:       "",
	DenylistDB:        filepath.Join(os.TempDir(), "staffdir-denylist.db"),
	DenylistCacheSize: 1000,
	DenylistFPRate:    0.01,
}

// validAPIBase accepts absolute http and https URLs with a host and no query
// or fragment, since endpoint paths are appended to it.
func validAPIBase(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && u.RawQuery == "" && u.Fragment == ""
}

// envLoader loads environment variables with the prefix "STAFF_".
// It transforms the keys to lowercase and removes the prefix,
// and can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the "api_base" tag with the provided validator.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("api_base", validAPIBase)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
