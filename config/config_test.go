package config

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"deedles.dev/wlcomp/compositor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wlcomp.toml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default, *cfg)
	assert.Equal(t, time.Second/60, cfg.FrameInterval())

	o, err := cfg.Orientation()
	require.NoError(t, err)
	assert.Equal(t, compositor.PrimaryOrientation, o)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
socket = "wayland-test"
frame_rate = 0

[output]
x = 10
y = 20
width = 1024
height = 768
physical_width = 300
physical_height = 200
orientation = "Inverted-Landscape"

[extensions]
touch = false
touch_flags = 1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wayland-test", cfg.Socket)
	assert.Zero(t, cfg.FrameInterval())
	assert.False(t, cfg.Extensions.Touch)
	assert.True(t, cfg.Extensions.SubSurface)
	assert.Equal(t, uint32(1), cfg.Extensions.TouchFlags)

	assert.Equal(t, compositor.Geometry{
		Rect:         image.Rect(10, 20, 1034, 788),
		PhysicalSize: image.Pt(300, 200),
		Make:         "wlcomp",
		Model:        "headless",
		Refresh:      60000,
	}, cfg.Geometry())

	o, err := cfg.Orientation()
	require.NoError(t, err)
	assert.Equal(t, compositor.InvertedLandscapeOrientation, o)
}

func TestLoadEnv(t *testing.T) {
	path := writeConfig(t, "[output]\nwidth = 1024\n")
	t.Setenv("WLCOMP_OUTPUT_WIDTH", "1920")
	t.Setenv("WLCOMP_SOCKET", "wayland-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Output.Width)
	assert.Equal(t, "wayland-env", cfg.Socket)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[output\nwidth = 3"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[output]\nwidth = 0\norientation = \"sideways\"\n"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid output size")
	assert.ErrorContains(t, err, "unknown orientation")
}
