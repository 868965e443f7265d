package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wsharp07/lucidboard/internal/config"
)

func TestRunInit(t *testing.T) {
	chdirTemp := func(t *testing.T) string {
		t.Helper()
		tmpDir := t.TempDir()
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(tmpDir))
		t.Cleanup(func() { os.Chdir(wd) })
		return tmpDir
	}

	t.Run("writes a loadable starter config", func(t *testing.T) {
		tmpDir := chdirTemp(t)
		forceInit = false

		require.NoError(t, runInit(initCmd, nil))

		cfg, err := config.Load(filepath.Join(tmpDir, "lucidboard.yml"))
		require.NoError(t, err)
		assert.Equal(t, ":3000", cfg.Listen)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		require.Len(t, cfg.Colsets, 2)
		assert.Equal(t, "Retrospective", cfg.Colsets[0].Name)
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		chdirTemp(t)
		forceInit = false

		require.NoError(t, runInit(initCmd, nil))
		err := runInit(initCmd, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("overwrites with force", func(t *testing.T) {
		chdirTemp(t)
		require.NoError(t, os.WriteFile("lucidboard.yml", []byte("stale"), 0644))

		forceInit = true
		t.Cleanup(func() { forceInit = false })

		require.NoError(t, runInit(initCmd, nil))

		data, err := os.ReadFile("lucidboard.yml")
		require.NoError(t, err)
		assert.Contains(t, string(data), "version: \"1.0\"")
	})
}
