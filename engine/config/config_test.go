package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/bolt/engine/core"
)

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[application]
name = "viewer"
frames = 120

[renderer]
auto_sort = false
clear_colour = [1.0, 0.5, 0.25, 1.0]

[assets]
model = "https://example.com/fox.glb"
watch = true

[animation]
clip = "Survey"
speed = 0.5
`))
	require.NoError(t, err)

	assert.Equal(t, "viewer", cfg.Application.Name)
	assert.Equal(t, uint64(120), cfg.Application.Frames)
	assert.Equal(t, uint32(1280), cfg.Application.Width)
	assert.False(t, cfg.Renderer.AutoSort)
	assert.True(t, cfg.Renderer.DepthTest)
	assert.Equal(t, [4]float32{1, 0.5, 0.25, 1}, cfg.Renderer.ClearColour)
	assert.Equal(t, "https://example.com/fox.glb", cfg.Assets.Model)
	assert.Equal(t, "assets", cfg.Assets.Dir)
	assert.True(t, cfg.Assets.Watch)
	assert.Equal(t, "Survey", cfg.Animation.Clip)
	assert.Equal(t, float32(0.5), cfg.Animation.Speed)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":      "[application\nname = 1",
		"wrong type":  "[application]\nwidth = \"wide\"",
		"zero width":  "[application]\nwidth = 0",
		"fov":         "[camera]\nfov = 180.0",
		"near planes": "[camera]\nnear = 10.0\nfar = 1.0",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n[debug]\ndump_scene = true\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, core.DebugLevel, cfg.LogLevel())
	assert.True(t, cfg.Debug.DumpScene)
}

func TestEncodeRoundTrip(t *testing.T) {
	want := Default()
	want.Camera.Target = [3]float32{0, 1, 0}
	data, err := want.Encode()
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
