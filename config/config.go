// Package config loads the service configuration from a yaml file, with
// environment overrides for deployment specific values.
package config

import (
	"flag"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr    = ":8080"
	defaultBaseCurrency  = "MXN"
	defaultMigrationsDir = "migrations"
)

// Config runtime configuration of the service.
type Config struct {
	ListenAddr    string
	DatabaseURL   string
	BaseCurrency  string
	MigrationsDir string
	FxRates       map[string]decimal.Decimal
	TLSDomains    []string
	TLSCacheDir   string
}

type configTmp struct {
	ListenAddr    string            `yaml:"listen_addr"`
	DatabaseURL   string            `yaml:"database_url"`
	BaseCurrency  string            `yaml:"base_currency"`
	MigrationsDir string            `yaml:"migrations_dir"`
	FxRates       map[string]string `yaml:"fx_rates"`
	TLSDomains    []string          `yaml:"tls_domains"`
	TLSCacheDir   string            `yaml:"tls_cache_dir"`
}

// Get loads the configuration from the file named by the --config flag.
func Get() (Config, error) {
	path := flag.String("config", "config.yaml", "path to yaml config")
	flag.Parse()

	return Load(*path)
}

// Load reads and validates the configuration at path. A missing file is
// not an error, environment overrides alone can carry a deployment.
func Load(path string) (Config, error) {
	var tmp configTmp

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &tmp); err != nil {
			return Config{}, errors.Wrapf(err, "failed to parse config %s", path)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg := Config{
		ListenAddr:    tmp.ListenAddr,
		DatabaseURL:   tmp.DatabaseURL,
		BaseCurrency:  tmp.BaseCurrency,
		MigrationsDir: tmp.MigrationsDir,
		TLSDomains:    tmp.TLSDomains,
		TLSCacheDir:   tmp.TLSCacheDir,
	}

	if len(tmp.FxRates) > 0 {
		cfg.FxRates = make(map[string]decimal.Decimal, len(tmp.FxRates))
		for pair, rate := range tmp.FxRates {
			d, err := decimal.NewFromString(rate)
			if err != nil {
				return Config{}, errors.Wrapf(err, "incorrect 'fx_rates' entry %q in yaml config (must be a decimal)", pair)
			}
			cfg.FxRates[pair] = d
		}
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("BASE_CURRENCY"); v != "" {
		cfg.BaseCurrency = v
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = defaultBaseCurrency
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = defaultMigrationsDir
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database url is not set, provide 'database_url' in the config file or DATABASE_URL in the environment")
	}

	return cfg, nil
}
