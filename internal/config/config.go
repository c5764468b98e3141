// Package config handles configuration loading for the treasury risk
// dashboard. It supports YAML config files, a .env file and environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seenimoa/treasuryrisk/internal/analysis/liquidity"
	"github.com/seenimoa/treasuryrisk/pkg/utils"
)

// EnvPrefix prefixes every environment override, e.g. TREASURYRISK_API_PORT.
const EnvPrefix = "TREASURYRISK"

// Config represents the complete application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"      yaml:"api"      json:"api"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis" json:"analysis"`
	Web      WebConfig      `mapstructure:"web"      yaml:"web"      json:"web"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"  json:"logging"`

	source string // config file the values were read from, if any
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"          yaml:"host"          json:"host"`
	Port        int      `mapstructure:"port"          yaml:"port"          json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"  yaml:"cors_origins"  json:"cors_origins"`
	MaxUploadMB int      `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
}

// AnalysisConfig holds defaults for the risk calculations.
type AnalysisConfig struct {
	Currency      string    `mapstructure:"currency"       yaml:"currency"       json:"currency"` // ISO 4217
	DefaultShocks []float64 `mapstructure:"default_shocks" yaml:"default_shocks" json:"default_shocks"`
	ShockOptions  []float64 `mapstructure:"shock_options"  yaml:"shock_options"  json:"shock_options"`
	MaturedPolicy string    `mapstructure:"matured_policy" yaml:"matured_policy" json:"matured_policy"` // "report" or "floor"
}

// WebConfig holds embedded UI settings.
type WebConfig struct {
	ServeUI bool `mapstructure:"serve_ui" yaml:"serve_ui" json:"serve_ui"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"       yaml:"level"       json:"level"`  // "debug", "info", "warn", "error"
	Format     string `mapstructure:"format"      yaml:"format"      json:"format"` // "text" or "json"
	File       string `mapstructure:"file"        yaml:"file"        json:"file"`   // optional rotating log file
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.treasuryrisk/config.yaml (home directory)
//  3. /etc/treasuryrisk/config.yaml (system)
//
// A .env file in the working directory is loaded into the environment
// first. Environment variables override config file values.
// Format: TREASURYRISK_<SECTION>_<KEY>, e.g., TREASURYRISK_API_PORT
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".treasuryrisk"))
	v.AddConfigPath("/etc/treasuryrisk")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if f := v.ConfigFileUsed(); f != "" {
		cfg.source = f
		slog.Debug("loaded config file", "path", f)
	}
	return &cfg, nil
}

// loadDotEnv loads ./.env if present. Variables already set in the
// environment win over the file.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("ignoring unreadable .env file", "error", err)
	}
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.max_upload_mb", 10)

	// Analysis defaults
	v.SetDefault("analysis.currency", utils.DefaultCurrency)
	v.SetDefault("analysis.default_shocks", []float64{-2, -1, 1, 2})
	v.SetDefault("analysis.shock_options", []float64{-2, -1, 1, 2})
	v.SetDefault("analysis.matured_policy", string(liquidity.MaturedReport))

	// Web defaults
	v.SetDefault("web.serve_ui", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
}

// Validate checks the configuration for values the server cannot run with.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port %d out of range", c.API.Port))
	}
	if c.API.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("api.max_upload_mb must be positive"))
	}

	if !utils.IsCurrency(c.Analysis.Currency) {
		errs = append(errs, fmt.Errorf("analysis.currency %q is not an ISO 4217 code", c.Analysis.Currency))
	}
	if _, err := liquidity.ParseMaturedPolicy(c.Analysis.MaturedPolicy); err != nil {
		errs = append(errs, fmt.Errorf("analysis.matured_policy: %w", err))
	}
	if len(c.Analysis.ShockOptions) == 0 {
		errs = append(errs, fmt.Errorf("analysis.shock_options must not be empty"))
	}
	for _, s := range c.Analysis.ShockOptions {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			errs = append(errs, fmt.Errorf("analysis.shock_options contains a non-finite shock"))
		}
	}
	for _, s := range c.Analysis.DefaultShocks {
		if !c.ShockAllowed(s) {
			errs = append(errs, fmt.Errorf("analysis.default_shocks: %v is not one of shock_options", s))
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q unknown (want debug, info, warn or error)", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q unknown (want text or json)", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// ShockAllowed reports whether s is one of the configured shock options.
func (c *Config) ShockAllowed(s float64) bool {
	for _, o := range c.Analysis.ShockOptions {
		if o == s {
			return true
		}
	}
	return false
}

// Source returns the config file that was read, or "" when only defaults
// and environment variables were used.
func (c *Config) Source() string {
	return c.source
}

// Addr returns the host:port the API server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
