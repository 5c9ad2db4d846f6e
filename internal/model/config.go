package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the production voter directory API.
const DefaultBaseURL = "https://voterslistbackend.onrender.com/api"

// APIConfig holds settings for the remote voter directory.
type APIConfig struct {
	// BaseURL is the fixed base address every request is resolved against.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level client configuration.
type AppConfig struct {
	API APIConfig `mapstructure:"api" yaml:"api"`

	// Ward is the ward opened on the dashboard at startup.
	Ward int `mapstructure:"ward" yaml:"ward"`

	// UpdatedBy is recorded against every status mutation.
	UpdatedBy string `mapstructure:"updated_by" yaml:"updated_by"`

	// SearchDebounceMs is the quiet period after the last keystroke before a
	// search is sent.
	SearchDebounceMs int `mapstructure:"search_debounce_ms" yaml:"search_debounce_ms"`

	// LogFile receives the client's structured log. The terminal belongs to
	// the UI, so nothing is logged to stderr.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`

	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// SearchDebounce returns the search debounce as a duration.
func (c *AppConfig) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMs) * time.Millisecond
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// ConfigDir returns ~/.config/voterroll, falling back to the working
// directory when no home directory is available.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "voterroll")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/voterroll/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    DefaultBaseURL,
			TimeoutSec: 30,
		},
		Ward:             12,
		UpdatedBy:        "admin",
		SearchDebounceMs: 400,
		LogFile:          filepath.Join(ConfigDir(), "voterroll.log"),
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// NewViper returns a viper instance with defaults and VOTERROLL_ environment
// overrides applied, ready to have flags bound before LoadConfig.
func NewViper() *viper.Viper {
	d := defaultAppConfig()

	v := viper.New()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("ward", d.Ward)
	v.SetDefault("updated_by", d.UpdatedBy)
	v.SetDefault("search_debounce_ms", d.SearchDebounceMs)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("display.theme", d.Display.Theme)

	v.SetEnvPrefix("VOTERROLL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads configuration from the given YAML file path using v.
// If the file does not exist, defaults (plus env and flag overrides) apply.
func LoadConfig(v *viper.Viper, path string) (*AppConfig, error) {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 30
	}
	if cfg.SearchDebounceMs < 0 {
		cfg.SearchDebounceMs = 0
	}
	if strings.TrimSpace(cfg.UpdatedBy) == "" {
		cfg.UpdatedBy = "admin"
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("ward", cfg.Ward)
	v.Set("updated_by", cfg.UpdatedBy)
	v.Set("search_debounce_ms", cfg.SearchDebounceMs)
	v.Set("log_file", cfg.LogFile)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
