package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: signal\n"))
	require.NoError(t, err)

	assert.Equal(t, "signal", cfg.App.Name)
	assert.Equal(t, 30, cfg.Pipeline.MaxSymbolsPerRun)
	assert.Equal(t, "input_order", cfg.Pipeline.CapPolicy)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.Equal(t, 10*time.Minute, cfg.Pipeline.RunTimeout)
	assert.Equal(t, "dual", cfg.Pipeline.ConfirmationPolicy)
	assert.Equal(t, 3, cfg.Pipeline.CallsPerSymbol)
	assert.Equal(t, "short", cfg.Pipeline.Horizon)
	assert.Equal(t, "binary", cfg.Classifier.MAScoring)
	assert.Equal(t, 70.0, cfg.Classifier.MinCombinedScore)
	assert.Equal(t, 2, cfg.Enrichment.MaxConcurrent)
	assert.Equal(t, 2*time.Second, cfg.Enrichment.DispatchDelay)
	assert.Equal(t, ".VN", cfg.YahooFinance.SymbolSuffix)
	assert.Equal(t, "tradingview", cfg.Watchlist.Source)
	assert.Equal(t, "memory", cfg.Cache.Backend)
}

func TestLoad_FileValuesWin(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
pipeline:
  max_symbols_per_run: 10
  cap_policy: rating
  run_timeout: 2m
  horizon: long
classifier:
  ma_scoring: scaled
  min_combined_score: 65
executor:
  redis_stream_signal_run_max_retry: 5
`))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Pipeline.MaxSymbolsPerRun)
	assert.Equal(t, "rating", cfg.Pipeline.CapPolicy)
	assert.Equal(t, 2*time.Minute, cfg.Pipeline.RunTimeout)
	assert.Equal(t, "long", cfg.Pipeline.Horizon)
	assert.Equal(t, "scaled", cfg.Classifier.MAScoring)
	assert.Equal(t, 65.0, cfg.Classifier.MinCombinedScore)
	assert.Equal(t, 5, cfg.Executor.RedisStreamSignalRunMaxRetry)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PIPELINE_WORKERS", "7")
	cfg, err := Load(writeConfig(t, "pipeline:\n  workers: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pipeline.Workers)
}
