package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 256, cfg.Synthesis.VolumeSize)
	assert.Equal(t, "astra", cfg.Synthesis.Centering)
	assert.Greater(t, cfg.Processing.NumWorkers, 0)
	assert.Equal(t, 180, cfg.Synthesis.AnglesCount)
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Synthesis.VolumeSize, cfg.Synthesis.VolumeSize)
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Synthesis.VolumeSize = 128
	cfg.Synthesis.Centering = "radon"
	cfg.Deformation.RFP = 0.25
	cfg.Output.SavePlanes = true

	path := filepath.Join(t.TempDir(), "cfg", "tomosynth.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 128, loaded.Synthesis.VolumeSize)
	assert.Equal(t, "radon", loaded.Synthesis.Centering)
	assert.Equal(t, 0.25, loaded.Deformation.RFP)
	assert.True(t, loaded.Output.SavePlanes)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("synthesis: ["), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
