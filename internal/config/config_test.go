package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 3, cfg.Auth.MaxAttempts)
	assert.Equal(t, 3*time.Minute, cfg.Auth.IdleTimeout())
	assert.True(t, cfg.Limits.DailyWithdrawLimit().Equal(decimal.NewFromInt(10000)))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Addr, cfg.Addr)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerd.yaml")

	cfg := Default()
	cfg.Addr = ":9090"
	cfg.Auth.MaxAttempts = 5
	cfg.Limits.DailyWithdraw = 2500
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", loaded.Addr)
	assert.Equal(t, 5, loaded.Auth.MaxAttempts)
	assert.Equal(t, int64(2500), loaded.Limits.DailyWithdraw)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerd.yaml")
	require.NoError(t, Save(path, Default()))

	t.Setenv("LEDGERD_ADDR", ":7070")
	t.Setenv("LEDGERD_IDLE_TIMEOUT_SECONDS", "60")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, time.Minute, cfg.Auth.IdleTimeout())
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [bad"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
