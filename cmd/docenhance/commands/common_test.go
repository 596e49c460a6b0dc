package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docenhance/internal/config"
)

func TestLoadConfigOrDefaults(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := loadConfigOrDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		require.Equal(t, "./public", cfg.Site.Root)
		require.Equal(t, "/assets/docenhance", cfg.Site.AssetBase)
	})

	t.Run("existing file is loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nsite:\n  root: ./docs\n"), 0o644))

		cfg, err := loadConfigOrDefaults(path)
		require.NoError(t, err)
		require.Equal(t, "./docs", cfg.Site.Root)
	})
}

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docenhance.yaml")

	require.NoError(t, RunInit(path, false))

	// The generated example must load cleanly.
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "./public", cfg.Site.Root)

	t.Run("refuses to overwrite", func(t *testing.T) {
		err := RunInit(path, false)
		require.Error(t, err)
		require.Contains(t, err.Error(), "already exists")
	})

	t.Run("force overwrites", func(t *testing.T) {
		require.NoError(t, RunInit(path, true))
	})
}
