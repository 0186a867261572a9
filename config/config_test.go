package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	require.Len(t, cfg.Languages, 2)
	require.Equal(t, "fallout-ssl", cfg.Languages[0].ID)
	require.Equal(t, "weidu-tp2", cfg.Languages[1].ID)
	require.True(t, cfg.Diagnostics.OnSave)
	require.Equal(t, 200, cfg.Completion.MaxItems)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
version: "1.0.0"
languages:
  - id: fallout-ssl
    extensions: [".ssl", ".h"]
    header_extensions: [".h"]
    compiler: ["/opt/sfall/compile", "-q"]
    header_dirs: ["/opt/fallout/headers"]
completion:
  max_items: 50
diagnostics:
  on_save: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Languages, 1)
	require.Equal(t, []string{"/opt/sfall/compile", "-q"}, cfg.Languages[0].Compiler)
	require.Equal(t, []string{"/opt/fallout/headers"}, cfg.Languages[0].HeaderDirs)
	require.Equal(t, 50, cfg.Completion.MaxItems)
	require.False(t, cfg.Diagnostics.OnSave)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("languages: [unclosed"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLanguageForPath(t *testing.T) {
	cfg := Default()

	lang, ok := cfg.LanguageForPath("scripts/dude.ssl")
	require.True(t, ok)
	require.Equal(t, "fallout-ssl", lang.ID)

	lang, ok = cfg.LanguageForPath("SETUP.TP2")
	require.True(t, ok)
	require.Equal(t, "weidu-tp2", lang.ID)

	_, ok = cfg.LanguageForPath("readme.md")
	require.False(t, ok)
}

func TestLanguageByID(t *testing.T) {
	cfg := Default()
	_, ok := cfg.LanguageByID("fallout-ssl")
	require.True(t, ok)
	_, ok = cfg.LanguageByID("qml")
	require.False(t, ok)
}
