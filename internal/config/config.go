// Package config loads formdispatch settings from a TOML file, then applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type (
	Config struct {
		Server  ServerConfig `toml:"server"`
		Client  ClientConfig `toml:"client"`
		Store   StoreConfig  `toml:"store"`
		GitHub  GitHubConfig `toml:"github"`
		Log     LogConfig    `toml:"log"`
		Locale  string       `toml:"locale"`
		Presets []string     `toml:"presets"`
	}

	ServerConfig struct {
		Addr            string   `toml:"addr"`
		ShutdownTimeout Duration `toml:"shutdown_timeout"`
		SeedOnStart     bool     `toml:"seed_on_start"`
	}

	ClientConfig struct {
		BaseURL string   `toml:"base_url"`
		Timeout Duration `toml:"timeout"`
	}

	StoreConfig struct {
		Driver     string `toml:"driver"`
		MongoURI   string `toml:"mongo_uri"`
		MongoDB    string `toml:"mongo_database"`
		SQLitePath string `toml:"sqlite_path"`
	}

	GitHubConfig struct {
		APIBaseURL string   `toml:"api_base_url"`
		Timeout    Duration `toml:"timeout"`
	}

	LogConfig struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	}
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

const (
	defaultAddr          = ":5000"
	defaultBaseURL       = "http://localhost:5000"
	defaultTimeout       = 15 * time.Second
	defaultShutdown      = 10 * time.Second
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "formbuilder"
	defaultSQLitePath    = "formdispatch.db"
	defaultGitHubAPI     = "https://api.github.com/"
	defaultLocale        = "en"
	defaultLogLevel      = "warn"
	defaultLogFormat     = "pretty"
)

// Duration decodes TOML strings such as "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            defaultAddr,
			ShutdownTimeout: Duration{defaultShutdown},
		},
		Client: ClientConfig{
			BaseURL: defaultBaseURL,
			Timeout: Duration{defaultTimeout},
		},
		Store: StoreConfig{
			Driver:     DriverMemory,
			MongoURI:   defaultMongoURI,
			MongoDB:    defaultMongoDatabase,
			SQLitePath: defaultSQLitePath,
		},
		GitHub: GitHubConfig{
			APIBaseURL: defaultGitHubAPI,
			Timeout:    Duration{defaultTimeout},
		},
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Locale: defaultLocale,
	}
}

// Load reads path when it is non-empty and exists, then applies env
// overrides from getenv (os.Getenv when nil).
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		default:
			if undecoded := meta.Undecoded(); len(undecoded) > 0 {
				return nil, fmt.Errorf("config: unknown key %q in %s", undecoded[0].String(), path)
			}
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := strings.TrimSpace(getenv(key)); v != "" {
				*dst = v
				return
			}
		}
	}
	setDuration := func(dst *Duration, key string) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		dst.Duration = parsed
		return nil
	}

	setString(&c.Server.Addr, "FORMDISPATCH_ADDR")
	setString(&c.Client.BaseURL, "FORMDISPATCH_API_URL")
	setString(&c.Store.Driver, "FORMDISPATCH_STORE")
	setString(&c.Store.MongoURI, "FORMDISPATCH_MONGO_URI", "MONGO_URI")
	setString(&c.Store.MongoDB, "FORMDISPATCH_MONGO_DATABASE", "MONGO_DATABASE")
	setString(&c.Store.SQLitePath, "FORMDISPATCH_SQLITE_PATH")
	setString(&c.GitHub.APIBaseURL, "FORMDISPATCH_GITHUB_API_URL")
	setString(&c.Locale, "FORMDISPATCH_LOCALE")
	setString(&c.Log.Level, "FORMDISPATCH_LOG_LEVEL")
	setString(&c.Log.Format, "FORMDISPATCH_LOG_FORMAT")

	if v := strings.TrimSpace(getenv("FORMDISPATCH_SEED")); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: FORMDISPATCH_SEED: %w", err)
		}
		c.Server.SeedOnStart = seed
	}
	if err := setDuration(&c.Client.Timeout, "FORMDISPATCH_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&c.Server.ShutdownTimeout, "FORMDISPATCH_SHUTDOWN_TIMEOUT")
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverMongo, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverMongo && c.Store.MongoURI == "" {
		return errors.New("config: mongo_uri is required for the mongo store")
	}
	if c.Store.Driver == DriverSQLite && c.Store.SQLitePath == "" {
		return errors.New("config: sqlite_path is required for the sqlite store")
	}
	if c.Client.Timeout.Duration <= 0 {
		return errors.New("config: client timeout must be positive")
	}
	if !strings.HasSuffix(c.GitHub.APIBaseURL, "/") {
		c.GitHub.APIBaseURL += "/"
	}
	return nil
}

// Write encodes c as TOML to path.
func (c *Config) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return c.Encode(f)
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return nil
}
