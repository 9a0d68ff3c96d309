package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.Extensions.LatexMacros)
	assert.True(t, cfg.Extensions.SmartQuotes)
	assert.False(t, cfg.Extensions.RawTex)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".latexdoc.yaml")
	cfg := Default()
	cfg.Extensions.RawTex = true
	cfg.DefaultImageExtension = ".png"

	require.NoError(t, cfg.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.True(t, got.Extensions.RawTex)
	assert.Equal(t, ".png", got.DefaultImageExtension)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extensions: [this is not a map"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnvOverridesIncludeCacheDir(t *testing.T) {
	t.Setenv("LATEXDOC_CACHE", "/tmp/my-cache")
	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "/tmp/my-cache", cfg.IncludeCacheDir)
}

func TestApplyEnvLeavesUnsetValueAlone(t *testing.T) {
	t.Setenv("LATEXDOC_CACHE", "")
	cfg := Default()
	cfg.IncludeCacheDir = "/already/set"
	cfg.ApplyEnv()
	assert.Equal(t, "/already/set", cfg.IncludeCacheDir)
}

func TestToOptionsCarriesInputSources(t *testing.T) {
	cfg := Default()
	opts := cfg.ToOptions([]string{"main.tex"})
	assert.Equal(t, []string{"main.tex"}, opts.InputSources)
	assert.True(t, opts.Extensions.LatexMacros)
}
