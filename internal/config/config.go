package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment keys read by Load.
const (
	EnvRemoteURL      = "DOCTEMPLATE_REMOTE_URL"
	EnvTimeout        = "DOCTEMPLATE_TIMEOUT"
	EnvLocalCatalog   = "DOCTEMPLATE_LOCAL_CATALOG"
	EnvLanguage       = "DOCTEMPLATE_LANGUAGE"
	EnvAddr           = "DOCTEMPLATE_ADDR"
	EnvBasePath       = "DOCTEMPLATE_BASE_PATH"
	EnvDocumentsAPI   = "DOCTEMPLATE_DOCUMENTS_API"
	EnvDocumentsToken = "DOCTEMPLATE_DOCUMENTS_TOKEN"
	EnvTheme          = "DOCTEMPLATE_THEME"
	EnvThemeVariant   = "DOCTEMPLATE_THEME_VARIANT"
	EnvPresets        = "DOCTEMPLATE_PRESETS"
	EnvLogLevel       = "LOG_LEVEL"
)

// Config is the runtime configuration shared by the commands.
type Config struct {
	Language string      `yaml:"language"`
	Server   Server      `yaml:"server"`
	Store    Store       `yaml:"store"`
	Docs     DocumentAPI `yaml:"documents"`
	Theme    Theme       `yaml:"theme"`
	Presets  string      `yaml:"presets"`
	LogLevel string      `yaml:"logLevel"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr           string        `yaml:"addr"`
	BasePath       string        `yaml:"basePath"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	MaxBodyBytes   int64         `yaml:"maxBodyBytes"`
}

// Store configures template resolution.
type Store struct {
	RemoteURL    string        `yaml:"remoteUrl"`
	Timeout      time.Duration `yaml:"timeout"`
	LocalCatalog string        `yaml:"localCatalog"`
}

// DocumentAPI configures the downstream persistence backend. An empty URL
// keeps documents in memory.
type DocumentAPI struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// Theme selects the marker theme.
type Theme struct {
	Name     string `yaml:"name"`
	Variant  string `yaml:"variant"`
	Manifest string `yaml:"manifest"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Language: "en",
		Server: Server{
			Addr:           ":8080",
			BasePath:       "/api",
			RequestTimeout: 30 * time.Second,
			MaxBodyBytes:   2 << 20,
		},
		Store: Store{
			Timeout: 5 * time.Second,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (when
// non-empty), then environment variables. A .env file in the working
// directory is loaded first when present.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	str(EnvRemoteURL, &c.Store.RemoteURL)
	str(EnvLocalCatalog, &c.Store.LocalCatalog)
	str(EnvLanguage, &c.Language)
	str(EnvAddr, &c.Server.Addr)
	str(EnvBasePath, &c.Server.BasePath)
	str(EnvDocumentsAPI, &c.Docs.URL)
	str(EnvDocumentsToken, &c.Docs.Token)
	str(EnvTheme, &c.Theme.Name)
	str(EnvThemeVariant, &c.Theme.Variant)
	str(EnvPresets, &c.Presets)
	str(EnvLogLevel, &c.LogLevel)

	if raw, ok := lookup(EnvTimeout); ok && strings.TrimSpace(raw) != "" {
		timeout, err := parseDuration(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvTimeout, err)
		}
		c.Store.Timeout = timeout
	}
	return nil
}

// parseDuration accepts Go durations and bare millisecond counts.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(raw)
}

// Validate rejects values the commands cannot run with.
func (c Config) Validate() error {
	if c.Store.Timeout <= 0 {
		return errors.New("config: store timeout must be positive")
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New("config: maxBodyBytes cannot be negative")
	}
	return nil
}
