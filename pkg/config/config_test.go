package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadFileMissingFallsBackToDefault(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apica.yml")
	yaml := "AppsDir: /srv/apps\nLogsDir: /srv/logs\nMetrics:\n  Enabled: true\n  Address: 127.0.0.1:9090\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/apps", cfg.AppsDir)
	require.Equal(t, "/srv/logs", cfg.LogsDir)
	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, "127.0.0.1:9090", cfg.Metrics.Address)
	require.Equal(t, DefaultApp, cfg.DefaultApp, "omitted field keeps its default")
}

func TestValidateRejectsUnknownLoggerEncoding(t *testing.T) {
	cfg := Default()
	cfg.Logger.Encoding = "xml"
	require.Error(t, cfg.Validate())
}

func TestValidateRequiresMetricsAddressWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Enabled = true
	require.Error(t, cfg.Validate())
}

func TestValidateRequiresDebugListenWSWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.Debug.Enabled = true
	require.Error(t, cfg.Validate())
}
