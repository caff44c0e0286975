package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	t.Run("relative paths resolve against base dir", func(t *testing.T) {
		base := t.TempDir()
		cfg := Default()
		cfg.Paths.BaseDir = base

		paths, err := cfg.GetPaths()
		require.NoError(t, err)

		assert.Equal(t, base, paths.BaseDir)
		assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
		assert.Equal(t, filepath.Join(base, "reports"), paths.ReportsDir)
		assert.Equal(t, filepath.Join(base, "logs", "dashboard.log"), paths.LogFile)
	})

	t.Run("absolute paths are kept", func(t *testing.T) {
		abs := t.TempDir()
		cfg := Default()
		cfg.Paths.BaseDir = t.TempDir()
		cfg.Paths.ReportsDir = abs

		paths, err := cfg.GetPaths()
		require.NoError(t, err)
		assert.Equal(t, abs, paths.ReportsDir)
	})

	t.Run("empty base uses working directory", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		paths, err := Default().GetPaths()
		require.NoError(t, err)
		assert.Equal(t, wd, paths.BaseDir)
	})
}

func TestEnsureDirectories(t *testing.T) {
	cfg := Default()
	cfg.Paths.BaseDir = t.TempDir()

	paths, err := cfg.GetPaths()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	assert.DirExists(t, paths.LogsDir)
	assert.DirExists(t, paths.ReportsDir)
	assert.True(t, FileExists(paths.ReportsDir))
	assert.False(t, FileExists(filepath.Join(paths.BaseDir, "missing")))
}
