package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/WomainOK/slideseq/pkg/errors"
)

// Cache backend names accepted in configuration.
const (
	CacheBackendFile   = "file"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// Config holds the optional TOML configuration. Every field has a working
// zero value, so a missing config file is not an error; flags override
// whatever the file sets.
type Config struct {
	Solve SolveConfig `toml:"solve"`
	Cache CacheConfig `toml:"cache"`
	Serve ServeConfig `toml:"serve"`
}

// SolveConfig holds default solve parameters.
type SolveConfig struct {
	TimeLimit         duration `toml:"time_limit"`
	MaxNodes          int64    `toml:"max_nodes"`
	StallLimit        duration `toml:"stall_limit"`
	Seed              int64    `toml:"seed"`
	Workers           int      `toml:"workers"`
	ExactThreshold    int      `toml:"exact_threshold"`
	LazyPairThreshold int      `toml:"lazy_pair_threshold"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"` // file (default), memory, redis, none
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServeConfig configures the API server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// duration lets TOML files write durations as strings ("30s", "2m").
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// LoadConfig reads a TOML config file. An empty path tries the default
// location and treats a missing file as an empty config.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %q not found", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config file %q", path)
	}

	switch cfg.Cache.Backend {
	case "", CacheBackendFile, CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if cfg.Cache.Redis.Addr == "" {
			return Config{}, errors.New(errors.ErrCodeInvalidOptions, "cache backend redis requires cache.redis.addr")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidOptions, "unknown cache backend %q", cfg.Cache.Backend)
	}

	return cfg, nil
}

// defaultConfigPath returns the XDG config location
// (~/.config/slideseq/config.toml).
func defaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}
