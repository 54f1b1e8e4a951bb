//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gisco-cli/internal/geoerr"
)

// inConfigDir runs the test from a temp dir holding configYAML (none when
// empty) and restores cfg afterwards.
func inConfigDir(t *testing.T, configYAML string) {
	t.Helper()
	dir := t.TempDir()
	if configYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o644))
	}

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	oldCfg := cfg
	cfg = nil
	t.Cleanup(func() { cfg = oldCfg })
}

func TestRootCmd_PersistentPreRunE_ConfigFile(t *testing.T) {
	inConfigDir(t, `
gisco:
  user_agent: test-agent
nuts:
  strategy: local
  scale: 20M
  year: 2021
log:
  level: info
  format: console
`)

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	require.NotNil(t, cfg)
	assert.Equal(t, "local", cfg.NUTS.Strategy)
	assert.Equal(t, "20M", cfg.NUTS.Scale)
	assert.Equal(t, 2021, cfg.NUTS.Year)
	assert.Equal(t, "test-agent", cfg.GISCO.UserAgent)
	assert.Equal(t, "https://gisco-services.ec.europa.eu", cfg.GISCO.BaseURL)
}

func TestRootCmd_PersistentPreRunE_Defaults(t *testing.T) {
	inConfigDir(t, "")

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	require.NotNil(t, cfg)
	assert.Equal(t, "remote", cfg.NUTS.Strategy)
	assert.Equal(t, 4326, cfg.NUTS.Proj)
	assert.Equal(t, "gisco", cfg.Providers.Default)
	assert.Equal(t, 1, cfg.Batch.Concurrency)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestRootCmd_PersistentPreRunE_EnvOverridesFile(t *testing.T) {
	inConfigDir(t, "nuts:\n  strategy: local\n")
	t.Setenv("GISCO_NUTS_STRATEGY", "postgis")
	t.Setenv("GISCO_PROVIDERS_BING_KEY", "bing-secret")
	t.Setenv("GISCO_STORE_DATABASE_URL", "postgres://localhost/nuts")

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.Equal(t, "postgis", cfg.NUTS.Strategy)
	assert.Equal(t, "bing-secret", cfg.Providers.BingKey)
	assert.Equal(t, "postgres://localhost/nuts", cfg.Store.DatabaseURL)
}

func TestInitEnv_RejectsProjectedLocalShapefiles(t *testing.T) {
	inConfigDir(t, "nuts:\n  strategy: local\n  proj: 3035\nlog:\n  format: console\n")
	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))

	env, err := initEnv(context.Background(), envOptions{withResolver: true})
	assert.Nil(t, env)
	require.Error(t, err)
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "nuts.proj 3035")
}

func TestInitEnv_LocalResolver(t *testing.T) {
	inConfigDir(t, "nuts:\n  strategy: local\nlog:\n  format: console\n")
	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))

	env, err := initEnv(context.Background(), envOptions{withResolver: true})
	require.NoError(t, err)
	defer env.Close()
	assert.NotNil(t, env.Resolver)
	assert.Nil(t, env.Pool)
	assert.Equal(t, "gisco", env.Geocoder.Provider().Name())
}

func TestRootCmd_PersistentPreRunE_BadLogLevel(t *testing.T) {
	inConfigDir(t, "log:\n  level: NOT_A_LEVEL\n  format: console\n")

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}

func TestRootCmd_PersistentPreRunE_InvalidYAML(t *testing.T) {
	inConfigDir(t, "invalid: [yaml: bad")

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRootCmd_PersistentPostRun_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		rootCmd.PersistentPostRun(rootCmd, nil)
	})
}
