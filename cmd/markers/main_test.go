package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/chartmarkers/pkg/config"
)

func TestLoadSettingsUsesGivenViper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 640\nformat: svg\n"), 0o644))

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().Float64("font-size", 12, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--config", path, "--font-size", "14"}))

	v := config.New()
	require.NoError(t, loadSettings(v, cmd))
	t.Cleanup(func() { settings = nil })

	assert.Equal(t, path, v.ConfigFileUsed())
	assert.Empty(t, viperInstance.ConfigFileUsed(), "the shared instance is untouched")
	assert.Equal(t, 640, settings.Width)
	assert.Equal(t, "svg", settings.Format)
	assert.Equal(t, 14.0, settings.Font.Size)
}

func TestLoadSettingsMissingConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Error(t, loadSettings(config.New(), cmd))
}
