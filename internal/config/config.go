package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files, environment variables and flags.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ServicesFile       string        `mapstructure:"services_file"`
	LoansServiceName   string        `mapstructure:"loans_service_name"`
	LoansBaseURL       string        `mapstructure:"loans_base_url"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	LookupConcurrency  int           `mapstructure:"lookup_concurrency"`

	PublishersFile string `mapstructure:"publishers_file"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// RegisterFlags declares the command-line overrides understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("base-url", "", "loans service base URL (skips the services file)")
	fs.String("services-file", "", "services registry file (YAML or JSON)")
	fs.String("publishers-file", "", "publishers file; empty disables publishing")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.Int("concurrency", 0, "maximum concurrent lookups")
}

var flagKeys = map[string]string{
	"base-url":        "loans_base_url",
	"services-file":   "services_file",
	"publishers-file": "publishers_file",
	"log-level":       "log_level",
	"concurrency":     "lookup_concurrency",
}

// Load reads configuration from configs/.env, environment variables and the
// explicitly set flags of fs (which may be nil). Flags win over the environment.
func Load(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "accounts-loans")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("services_file", "./configs/services.yaml")
	v.SetDefault("loans_service_name", "loans")
	v.SetDefault("loans_base_url", "")
	v.SetDefault("http_timeout_seconds", 10)
	v.SetDefault("lookup_concurrency", 4)
	v.SetDefault("publishers_file", "")
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/snapshots.db")
	v.SetDefault("storage_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))

	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.LoansServiceName = strings.TrimSpace(c.LoansServiceName)
	c.LoansBaseURL = strings.TrimSpace(c.LoansBaseURL)
	c.ServicesFile = strings.TrimSpace(c.ServicesFile)
	c.PublishersFile = strings.TrimSpace(c.PublishersFile)

	if c.LoansServiceName == "" {
		return fmt.Errorf("loans_service_name must not be empty")
	}
	if c.LoansBaseURL == "" && c.ServicesFile == "" {
		return fmt.Errorf("either loans_base_url or services_file must be set")
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second

	if c.LookupConcurrency <= 0 {
		return fmt.Errorf("invalid lookup_concurrency (must be positive)")
	}

	if c.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if c.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	c.StorageTTL = time.Duration(c.StorageTTLSeconds) * time.Second
	c.StorageCleanupInterval = time.Duration(c.StorageCleanupSeconds) * time.Second

	return nil
}
