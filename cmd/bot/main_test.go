package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/model"
)

func testConfig(t *testing.T) (string, string) {
	t.Helper()
	for _, k := range []string{"DISCORD_WEBHOOK_URL", "DATA_PROVIDER", "HTTPS_PROXY", "SQLITE_PATH",
		"WATCHLIST_PATH", "METRICS_ADDR", "ANALYSIS_WORKERS"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	wlPath := filepath.Join(dir, "watchlist.yaml")
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "data_source:\n  provider: mock\n" +
		"cache:\n  sqlite_path: " + filepath.Join(dir, "cache.db") + "\n" +
		"discovery:\n  delay: 0s\n" +
		"watchlist:\n  path: " + wlPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath, wlPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSelectMarkets(t *testing.T) {
	wl := model.Watchlist{Markets: []model.Market{{Key: "tw"}, {Key: "us"}}}

	got, err := selectMarkets(wl, "all")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = selectMarkets(wl, "us")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "us", got[0].Key)

	_, err = selectMarkets(wl, "jp")
	assert.ErrorContains(t, err, `unknown market "jp"`)

	_, err = selectMarkets(model.Watchlist{}, "all")
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	assert.Error(t, setupLogging(io.Discard, "loud", false))
	assert.NoError(t, setupLogging(io.Discard, "debug", true))
	assert.NoError(t, setupLogging(io.Discard, "info", false))
}

func TestPrintCommand(t *testing.T) {
	cfgPath, _ := testConfig(t)
	out, err := execute(t, "--config", cfgPath, "--env-file", "missing.env",
		"print", "--market", "tw", "--no-discovery")
	require.NoError(t, err)
	assert.Contains(t, out, "MarketPulse · Taiwan")
	assert.Contains(t, out, "TAIEX (^TWII)")
	assert.Contains(t, out, "Semiconductors")
	assert.Contains(t, out, "Top stocks")
}

func TestPrintCommand_Quick(t *testing.T) {
	cfgPath, _ := testConfig(t)
	out, err := execute(t, "--config", cfgPath, "--env-file", "missing.env", "print", "--market", "tw", "--quick")
	require.NoError(t, err)
	assert.Contains(t, out, "TAIEX (^TWII)")
	assert.NotContains(t, out, "Sector ranking")
}

func TestRunCommand_RequiresWebhook(t *testing.T) {
	cfgPath, _ := testConfig(t)
	_, err := execute(t, "--config", cfgPath, "--env-file", "missing.env", "run", "--market", "tw")
	assert.ErrorContains(t, err, "discord webhook required")
}

func TestPredictCommand(t *testing.T) {
	cfgPath, _ := testConfig(t)
	out, err := execute(t, "--config", cfgPath, "--env-file", "missing.env", "predict", "nvda")
	require.NoError(t, err)
	assert.Contains(t, out, "NVDA (NVDA)")
	assert.Contains(t, out, "1 week")
}

func TestWatchlistCommands(t *testing.T) {
	cfgPath, wlPath := testConfig(t)
	base := []string{"--config", cfgPath, "--env-file", "missing.env", "watchlist"}
	run := func(args ...string) (string, error) {
		return execute(t, append(append([]string{}, base...), args...)...)
	}

	out, err := run("add-sector", "us", "Crypto", "coin", "mstr")
	require.NoError(t, err)
	assert.Contains(t, out, "added sector us/Crypto")

	out, err = run("add", "us", "Crypto", "hood")
	require.NoError(t, err)
	assert.Contains(t, out, "added HOOD to us/Crypto")

	out, err = run("list", "us")
	require.NoError(t, err)
	assert.Contains(t, out, "COIN MSTR HOOD")
	assert.NotContains(t, out, "Taiwan")

	_, err = run("add", "us", "Crypto", "HOOD")
	assert.Error(t, err)

	_, err = run("remove", "us", "Crypto", "MSTR")
	require.NoError(t, err)
	_, err = run("remove-sector", "us", "Crypto")
	require.NoError(t, err)

	out, err = run("list", "us")
	require.NoError(t, err)
	assert.NotContains(t, out, "Crypto")
	assert.FileExists(t, wlPath)
}
