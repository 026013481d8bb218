// Package config loads the pacstage TOML configuration.
//
// The file is looked up at $PACSTAGE_CONFIG, then
// $XDG_CONFIG_HOME/pacstage/config.toml, then ~/.config/pacstage/config.toml.
// A missing file is not an error: every field has a default.
//
//	backend = "pkgdir"
//	pkgdir  = "/srv/packages"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "cache.internal:6379"
//	ttl = "30m"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pacstage/pkg/deps"
	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/pacman"
	"github.com/matzehuels/pacstage/pkg/stage"
)

// AppName is used for configuration, cache and data directories.
const AppName = "pacstage"

// EnvConfig names the environment variable that overrides the config path.
const EnvConfig = "PACSTAGE_CONFIG"

// Query backends.
const (
	BackendPacman = "pacman"
	BackendPkgDir = "pkgdir"
)

// Cache and history backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
	StoreMongo = "mongo"
	StoreNone  = "none"
)

// Config is the complete configuration file.
type Config struct {
	Backend  string          `toml:"backend"`
	PkgDir   string          `toml:"pkgdir"`
	Sentinel string          `toml:"sentinel"`
	Commands pacman.Commands `toml:"commands"`
	Cache    CacheConfig     `toml:"cache"`
	History  HistoryConfig   `toml:"history"`
	Stage    StageConfig     `toml:"stage"`
	Server   ServerConfig    `toml:"server"`
}

// CacheConfig selects and configures the query cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisDB       int      `toml:"redis_db"`
	RedisPassword string   `toml:"redis_password"`
}

// HistoryConfig selects and configures the run history store.
type HistoryConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// StageConfig holds the installer template.
type StageConfig struct {
	Install []string `toml:"install"`
}

// ServerConfig configures `pacstage serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration that decodes from TOML strings like "1h30m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backend:  BackendPacman,
		Sentinel: deps.DefaultSentinel,
		Commands: pacman.DefaultCommands(),
		Cache: CacheConfig{
			Backend:   StoreFile,
			TTL:       Duration{deps.DefaultCacheTTL},
			RedisAddr: "localhost:6379",
		},
		History: HistoryConfig{
			Backend:         StoreFile,
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   AppName,
			MongoCollection: "runs",
		},
		Stage: StageConfig{
			Install: stage.DefaultInstall(),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Path returns the config file location from the environment.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path, or at Path() when path is empty.
// A missing file yields Default(); unknown keys are rejected.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.Commands = cfg.Commands.WithDefaults()
	if len(cfg.Stage.Install) == 0 {
		cfg.Stage.Install = stage.DefaultInstall()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Validate checks enum fields and required combinations.
func (c *Config) Validate() error {
	if !slices.Contains([]string{BackendPacman, BackendPkgDir}, c.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "backend: %q (must be one of: pacman, pkgdir)", c.Backend)
	}
	if c.Backend == BackendPkgDir && c.PkgDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "pkgdir is required for the pkgdir backend")
	}
	if strings.TrimSpace(c.Sentinel) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "sentinel cannot be empty")
	}
	if !slices.Contains([]string{StoreFile, StoreRedis, StoreNone}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	if !slices.Contains([]string{StoreFile, StoreMongo, StoreNone}, c.History.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "history.backend: %q (must be one of: file, mongo, none)", c.History.Backend)
	}
	if err := c.Commands.Validate(); err != nil {
		return err
	}
	return stage.ValidateInstall(c.Stage.Install)
}
