// Package config loads depharvest configuration from a TOML file with
// environment-variable overrides.
//
// The default location is ~/.config/depharvest/config.toml. All fields are
// optional; zero values fall back to built-in defaults.
//
// Example:
//
//	base_url = "https://gitlab.example.com"
//	ref = "main"
//	batch_size = 100
//	workers = 4
//
//	[cache]
//	backend = "redis"          # none | file | redis | mongo
//	redis_addr = "localhost:6379"
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depharvest/pkg/cache"
)

// Cache backend names accepted in the config file.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config holds all settings for the harvester.
type Config struct {
	// BaseURL is the GitLab instance root (default https://gitlab.com).
	BaseURL string `toml:"base_url"`

	// Token is the bearer credential for the hosting API.
	// Overridden by DEPHARVEST_TOKEN or GITLAB_TOKEN if set.
	Token string `toml:"token"`

	// Ref is the default git ref to harvest (default "main").
	Ref string `toml:"ref"`

	// BatchSize caps paths per content-fetch request (default and max 100).
	BatchSize int `toml:"batch_size"`

	// Workers bounds concurrent batch processing (default 1, sequential).
	Workers int `toml:"workers"`

	Cache CacheConfig `toml:"cache"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`        // file backend
	RedisAddr string `toml:"redis_addr"` // redis backend
	RedisPass string `toml:"redis_pass"`
	RedisDB   int    `toml:"redis_db"`
	MongoURI  string `toml:"mongo_uri"` // mongo backend
	MongoDB   string `toml:"mongo_db"`
}

// Default returns a Config with built-in defaults applied.
func Default() Config {
	return Config{
		BaseURL:   "https://gitlab.com",
		Ref:       "main",
		BatchSize: 100,
		Workers:   1,
		Cache:     CacheConfig{Backend: BackendNone},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "depharvest", "config.toml"), nil
}

// Load reads the config file at path, applies defaults for unset fields,
// and applies environment overrides. A missing file is not an error: the
// defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg.withDefaults(), nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DEPHARVEST_TOKEN"); v != "" {
		cfg.Token = v
	} else if v := os.Getenv("GITLAB_TOKEN"); v != "" && cfg.Token == "" {
		cfg.Token = v
	}
	if v := os.Getenv("DEPHARVEST_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
}

func (c Config) withDefaults() Config {
	def := Default()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.Ref == "" {
		c.Ref = def.Ref
	}
	if c.BatchSize <= 0 || c.BatchSize > 100 {
		c.BatchSize = def.BatchSize
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendNone
	}
	return c
}

// OpenCache constructs the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendFile:
		dir := c.Cache.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(home, ".cache", "depharvest")
		}
		return cache.NewFileCache(dir)
	case BackendRedis:
		addr := c.Cache.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		return cache.NewRedisCache(ctx, addr, c.Cache.RedisPass, c.Cache.RedisDB)
	case BackendMongo:
		uri := c.Cache.MongoURI
		if uri == "" {
			uri = "mongodb://localhost:27017"
		}
		db := c.Cache.MongoDB
		if db == "" {
			db = "depharvest"
		}
		return cache.NewMongoCache(ctx, uri, db)
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be one of: none, file, redis, mongo)", c.Cache.Backend)
	}
}
