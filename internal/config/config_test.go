package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesBusinessRules(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.Signals.FreshnessWindow)
	assert.Equal(t, 30*time.Second, cfg.Signals.ExpirySweepInterval)
	assert.Equal(t, 30*time.Minute, cfg.Sentiment.RefreshInterval)
	assert.Equal(t, 30, cfg.Sentiment.LongBelow)
	assert.Equal(t, 80, cfg.Sentiment.ShortAbove)
	assert.Equal(t, 70, cfg.Sentiment.LegacyShortAbove)
	assert.Equal(t, 2, cfg.Trading.MaxOpenOperations)
	assert.Equal(t, 2*time.Hour, cfg.Trading.SymbolCooldown)
	assert.Equal(t, 48*time.Hour, cfg.Affiliate.LinkingWindow)
	assert.Equal(t, 7*24*time.Hour, cfg.Affiliate.ApprovalWindow)
	assert.InDelta(t, 0.015, cfg.Affiliate.DefaultRate, 1e-12)
	assert.Equal(t, 2*time.Hour, cfg.Retention.CleanupInterval)
}

func TestMustLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
env: test
signal_db:
  driver: memory
trading:
  leverage: 10
  symbol_cooldown: 90m
sentiment:
  short_above: 75
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("SIGNAL_CONFIG_PATH", path)

	cfg := MustLoad()
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "memory", cfg.SignalDB.Driver)
	assert.Equal(t, int32(10), cfg.Trading.Leverage)
	assert.Equal(t, 90*time.Minute, cfg.Trading.SymbolCooldown)
	assert.Equal(t, 75, cfg.Sentiment.ShortAbove)
	assert.Equal(t, 30, cfg.Sentiment.LongBelow)
}
