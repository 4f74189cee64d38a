package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("RUNTEST_TEST_DIR", "custom/test/dir")

	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "paths:\n  test_dir: \"${RUNTEST_TEST_DIR}\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom/test/dir", cfg.Paths.TestDir)
}

func TestLoadMetricsAddrEnvOverride(t *testing.T) {
	t.Setenv("RUNTEST_METRICS_ADDR", ":9999")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Reporting.MetricsAddr)
}

func TestLoadBuildShardAndBisectionEnvOverrides(t *testing.T) {
	t.Setenv("ART_TEST_RUN_FROM_SOONG", "true")
	t.Setenv("ART_TEST_BISECTION", "true")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.Framework.RunningUnderBuildShard)
	assert.True(t, cfg.Framework.ForceNoPrebuild)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Framework.LogLevel = "debug"
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.Framework.LogLevel)
}

func TestValidateRejectsMissingFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Paths.MarkerFile = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Remote.ExecTemplate = nil
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timeouts.ChildTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestGetEnvBoolean(t *testing.T) {
	t.Setenv("RUNTEST_BOOL_TEST", "True")
	assert.True(t, GetEnvBoolean("RUNTEST_BOOL_TEST", false))

	t.Setenv("RUNTEST_BOOL_TEST", "false")
	assert.False(t, GetEnvBoolean("RUNTEST_BOOL_TEST", true))

	t.Setenv("RUNTEST_BOOL_TEST", "garbage")
	assert.Equal(t, true, GetEnvBoolean("RUNTEST_BOOL_TEST", true))

	assert.False(t, GetEnvBoolean("RUNTEST_BOOL_TEST_UNSET", false))
}
