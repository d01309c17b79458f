package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WomainOK/slideseq/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[solve]
time_limit = "30s"
seed = 42
workers = 4

[cache]
backend = "redis"

[cache.redis]
addr = "localhost:6379"
db = 1

[serve]
addr = ":9090"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, time.Duration(cfg.Solve.TimeLimit))
	assert.Equal(t, int64(42), cfg.Solve.Seed)
	assert.Equal(t, 4, cfg.Solve.Workers)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 1, cfg.Cache.Redis.DB)
	assert.Equal(t, ":9090", cfg.Serve.Addr)
}

func TestLoadConfigMissingDefaultIsEmpty(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfigExplicitMissingIsError(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
[cache]
backend = "etcd"
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidOptions, errors.GetCode(err))
}

func TestLoadConfigRedisRequiresAddr(t *testing.T) {
	path := writeConfig(t, `
[cache]
backend = "redis"
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidOptions, errors.GetCode(err))
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := writeConfig(t, "not [valid toml")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}
