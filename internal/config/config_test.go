package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumos/domain/assay"
	"lumos/internal/errors"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"LUMOS_CONFIG", "LUMOS_DELIMITER", "LUMOS_VARIABLES", "LUMOS_INCLUDE_AREA", "LUMOS_DECIMAL_COMMA",
		"LUMOS_TREND_FRACTION", "LUMOS_OUTPUT_DIR", "LUMOS_CHART_CONCURRENCY", "PORT", "GIN_MODE",
		"MAX_UPLOAD_MB", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "-", cfg.Analysis.Delimiter)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.PipelineOptions().IncludeAreaRatios)
	assert.InDelta(t, 2.0/3.0, cfg.PlotOptions().TrendFraction, 1e-12)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LUMOS_DELIMITER", "underscore")
	t.Setenv("LUMOS_VARIABLES", "dilution_lot")
	t.Setenv("LUMOS_INCLUDE_AREA", "true")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.PipelineOptions().IncludeAreaRatios)

	schema, err := cfg.Schema()
	require.NoError(t, err)
	assert.Equal(t, assay.Underscore, schema.Delimiter())
	assert.Equal(t, []string{"dilution", "lot"}, schema.Names())
}

func TestLoadFileThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "lumos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
analysis:
  delimiter: "_"
  decimal_comma: true
server:
  port: "7000"
  gin_mode: release
output:
  dir: /tmp/lumos
`), 0o600))
	t.Setenv("LUMOS_CONFIG", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "_", cfg.Analysis.Delimiter)
	assert.True(t, cfg.Coercion().DecimalComma)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "7001", cfg.Server.Port, "environment overrides the file")
	assert.Equal(t, "/tmp/lumos", cfg.Output.Dir)
	assert.Equal(t, 4, cfg.Output.ChartConcurrency, "absent keys keep defaults")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"delimiter":      {"LUMOS_DELIMITER": "|"},
		"trend fraction": {"LUMOS_TREND_FRACTION": "1.5"},
		"gin mode":       {"GIN_MODE": "verbose"},
		"variables":      {"LUMOS_VARIABLES": "a-a"},
		"log level":      {"LOG_LEVEL": "LOUD"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LUMOS_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
