// Package config loads flownet settings from a TOML file and FLOWNET_*
// environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment. The merged result is validated before it is returned.
//
// Example flownet.toml:
//
//	[log]
//	level = "debug"
//
//	[server]
//	addr = ":9090"
//	workers = 4
//	shutdown_timeout = "15s"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[storage]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// AppName names the config and cache directories.
const AppName = "flownet"

// FileName is the config file looked up in the config directory.
const FileName = "flownet.toml"

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageMongo  = "mongo"
)

// Config holds all application configuration.
type Config struct {
	Log     Log     `toml:"log"`
	Server  Server  `toml:"server"`
	Cache   Cache   `toml:"cache"`
	Storage Storage `toml:"storage"`
}

// Log configures the CLI logger.
type Log struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// Server configures "flownet serve".
type Server struct {
	Addr            string   `toml:"addr" validate:"required"`
	Workers         int      `toml:"workers" validate:"min=1,max=1024"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	Metrics         bool     `toml:"metrics"`
}

// Cache selects where solve results and renders are cached.
type Cache struct {
	Backend       string `toml:"backend" validate:"oneof=file memory redis none"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db" validate:"min=0"`
	Prefix        string `toml:"prefix"`
}

// Storage selects where the API keeps saved graphs.
type Storage struct {
	Backend       string `toml:"backend" validate:"oneof=memory file mongo"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string `toml:"mongo_database"`
}

// Duration is a time.Duration written as a string such as "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: Log{Level: "info"},
		Server: Server{
			Addr:            ":8080",
			Workers:         8,
			ShutdownTimeout: Duration{10 * time.Second},
			Metrics:         true,
		},
		Cache:   Cache{Backend: CacheFile},
		Storage: Storage{Backend: StorageMemory},
	}
}

// Load reads path, applies the environment and validates the result.
// An empty path uses DefaultPath, which may be missing; an explicit path
// must exist.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// envVars maps each FLOWNET_* variable to the field it overrides.
func (c *Config) envVars() map[string]any {
	return map[string]any{
		"FLOWNET_LOG_LEVEL":               &c.Log.Level,
		"FLOWNET_SERVER_ADDR":             &c.Server.Addr,
		"FLOWNET_SERVER_WORKERS":          &c.Server.Workers,
		"FLOWNET_SERVER_SHUTDOWN_TIMEOUT": &c.Server.ShutdownTimeout,
		"FLOWNET_SERVER_METRICS":          &c.Server.Metrics,
		"FLOWNET_CACHE_BACKEND":           &c.Cache.Backend,
		"FLOWNET_CACHE_DIR":               &c.Cache.Dir,
		"FLOWNET_REDIS_ADDR":              &c.Cache.RedisAddr,
		"FLOWNET_REDIS_PASSWORD":          &c.Cache.RedisPassword,
		"FLOWNET_REDIS_DB":                &c.Cache.RedisDB,
		"FLOWNET_STORAGE_BACKEND":         &c.Storage.Backend,
		"FLOWNET_STORAGE_DIR":             &c.Storage.Dir,
		"FLOWNET_MONGO_URI":               &c.Storage.MongoURI,
		"FLOWNET_MONGO_DATABASE":          &c.Storage.MongoDatabase,
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for name, field := range c.envVars() {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		var err error
		switch f := field.(type) {
		case *string:
			*f = v
		case *int:
			*f, err = strconv.Atoi(v)
		case *bool:
			*f, err = strconv.ParseBool(v)
		case *Duration:
			err = f.UnmarshalText([]byte(v))
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		msgs := make([]string, len(fieldErrs))
		for i, fe := range fieldErrs {
			msgs[i] = fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/flownet/flownet.toml, falling back
// to ~/.config/flownet/flownet.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, FileName), nil
}

// CacheDir returns the file cache directory: Cache.Dir when set, else
// $XDG_CACHE_HOME/flownet or ~/.cache/flownet.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
