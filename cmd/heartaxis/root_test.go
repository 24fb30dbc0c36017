package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/heartaxis/internal/config"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addGlobalFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heartaxis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: memory\nlog:\n  level: warn\n"), 0644))

	cmd := newTestCommand(t, "--config", path, "--dir", filepath.Join(dir, "s"), "--log-level", "error")
	cfg, logger, err := loadConfig(cmd)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, filepath.Join(dir, "s"), cfg.Store.Dir)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadConfig_InvalidOverrides(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")

	_, _, err := loadConfig(newTestCommand(t, "--config", missing, "--store", "etcd"))
	assert.Error(t, err)

	_, _, err = loadConfig(newTestCommand(t, "--config", missing, "--log-level", "loud"))
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"calc", "run", "serve", "mcp", "session", "settings", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "0.3.0\n", versionString(true))
	full := versionString(false)
	assert.Contains(t, full, "heartaxis 0.3.0 ("+runtime.Version())
	assert.Contains(t, full, runtime.GOOS+"/"+runtime.GOARCH)
}
