package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JulianC775/Gubs/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "gubs_actions", cfg.ActionQueue)
	assert.Equal(t, 24*time.Hour, cfg.SnapshotTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 20, cfg.HistorianBatchSize)
	assert.Equal(t, 10*time.Minute, cfg.HistorianInactivity)

	rules, err := cfg.HouseRules()
	require.NoError(t, err)
	assert.Equal(t, game.DefaultHouseRules(), rules)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gubs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
log_level: debug
redis_addr: localhost:6379
snapshot_ttl: 2h
max_players: 4
`), 0o644))
	t.Setenv("GUBS_PORT", "9100")
	t.Setenv("GUBS_HAND_LIMIT", "10")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port, "env beats the file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2*time.Hour, cfg.SnapshotTTL)

	rules, err := cfg.HouseRules()
	require.NoError(t, err)
	assert.Equal(t, 4, rules.MaxPlayers)
	assert.Equal(t, 10, rules.HandLimit)
	assert.Equal(t, 3, rules.StartingHand)
}

func TestLoadRejectsBadRules(t *testing.T) {
	t.Setenv("GUBS_MAX_PLAYERS", "9")
	_, err := Load("")
	assert.ErrorIs(t, err, game.ErrInvalidPlayerCount)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
