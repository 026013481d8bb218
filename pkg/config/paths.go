package config

import (
	"os"
	"path/filepath"
)

// ConfigDir returns the configuration directory (~/.config/pacstage/).
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns the cache directory (~/.cache/pacstage/).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DataDir returns the data directory (~/.local/share/pacstage/).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// CacheDirOrDefault returns c.Cache.Dir when set, else CacheDir().
func (c *Config) CacheDirOrDefault() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return CacheDir()
}

// HistoryDirOrDefault returns c.History.Dir when set, else DataDir()/history.
func (c *Config) HistoryDirOrDefault() (string, error) {
	if c.History.Dir != "" {
		return c.History.Dir, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
