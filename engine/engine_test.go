package engine

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/bolt/engine/assets/loaders"
	"github.com/spaghettifunk/bolt/engine/config"
	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/renderer/headless"
	"github.com/spaghettifunk/bolt/engine/systems"
)

func triangleDocument(t *testing.T) []byte {
	t.Helper()
	var bin bytes.Buffer
	require.NoError(t, binary.Write(&bin, binary.LittleEndian, [9]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}))
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin.Bytes())
	return []byte(fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "buffers": [{"uri": %q, "byteLength": 36}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "type": "VEC3", "count": 3}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
  "nodes": [{"name": "tri", "mesh": 0}],
  "scenes": [{"nodes": [0]}]
}`, uri))
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	cfg := config.Default()
	cfg.Application.TargetFPS = 1000
	cfg.Assets.Dir = t.TempDir()
	return &Game{ApplicationConfig: NewApplicationConfig(cfg)}
}

func TestEngineRunsConfiguredFrames(t *testing.T) {
	g := newTestGame(t)
	g.ApplicationConfig.MaxFrames = 3

	updates, renders := 0, 0
	g.FnUpdate = func(deltaTime float64) error {
		updates++
		return nil
	}
	g.FnRender = func(renderer *systems.RendererSystem, deltaTime float64) error {
		renders++
		return nil
	}

	backend := headless.New()
	e, err := New(g, backend)
	require.NoError(t, err)
	require.Same(t, e, g.Engine)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())
	require.NoError(t, e.Shutdown())

	assert.Equal(t, 3, updates)
	assert.Equal(t, 3, renders)
	assert.Equal(t, uint64(3), backend.Frame())
	assert.Equal(t, uint64(3), e.Metrics().TotalFrames())
	assert.Equal(t, EngineStageShuttingDown, e.Stage())
}

func TestEngineRunRequiresInitialize(t *testing.T) {
	e, err := New(newTestGame(t), headless.New())
	require.NoError(t, err)
	assert.Error(t, e.Run())
}

func TestEngineStopsOnUpdateError(t *testing.T) {
	g := newTestGame(t)
	g.FnUpdate = func(deltaTime float64) error {
		return core.ErrUnknown
	}
	e, err := New(g, headless.New())
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.ErrorIs(t, e.Run(), core.ErrUnknown)
	require.NoError(t, e.Shutdown())
}

func TestEngineLoadModelAsync(t *testing.T) {
	g := newTestGame(t)
	g.ApplicationConfig.MaxFrames = 5000
	path := filepath.Join(g.ApplicationConfig.AssetsDir, "triangle.gltf")
	require.NoError(t, os.WriteFile(path, triangleDocument(t), 0o644))

	backend := headless.New()
	e, err := New(g, backend)
	require.NoError(t, err)

	var loaded *loaders.Model
	var loadErr error
	calls := 0
	g.FnInitialize = func() error {
		return e.LoadModelAsync("triangle.gltf", func(model *loaders.Model, err error) {
			calls++
			loaded, loadErr = model, err
		})
	}
	g.FnUpdate = func(deltaTime float64) error {
		if calls > 0 {
			e.Stop()
		}
		return nil
	}
	g.FnRender = func(renderer *systems.RendererSystem, deltaTime float64) error {
		if loaded != nil {
			renderer.Draw(loaded.Root)
		}
		return nil
	}

	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())

	require.Equal(t, 1, calls)
	require.NoError(t, loadErr)
	require.NotNil(t, loaded)
	assert.Equal(t, "triangle", loaded.Name)
	assert.NotNil(t, loaded.Root.Find("tri"))

	loaded.Delete()
	require.NoError(t, e.Shutdown())
	assert.Zero(t, backend.LiveBuffers())
}

func TestEngineLoadModelAsyncReportsFailure(t *testing.T) {
	g := newTestGame(t)
	g.ApplicationConfig.MaxFrames = 5000
	e, err := New(g, headless.New())
	require.NoError(t, err)

	var loadErr error
	done := false
	g.FnInitialize = func() error {
		return e.LoadModelAsync(filepath.Join(t.TempDir(), "missing.glb"), func(model *loaders.Model, err error) {
			assert.Nil(t, model)
			loadErr, done = err, true
		})
	}
	g.FnUpdate = func(deltaTime float64) error {
		if done {
			e.Stop()
		}
		return nil
	}

	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())
	require.NoError(t, e.Shutdown())
	assert.ErrorIs(t, loadErr, core.ErrResourceFetch)
}

func TestEngineResize(t *testing.T) {
	g := newTestGame(t)
	var sizes [][2]uint32
	g.FnOnResize = func(width, height uint32) error {
		sizes = append(sizes, [2]uint32{width, height})
		return nil
	}
	backend := headless.New()
	e, err := New(g, backend)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	require.NoError(t, e.OnResize(0, 0))
	assert.True(t, e.isSuspended)

	require.NoError(t, e.OnResize(800, 400))
	assert.False(t, e.isSuspended)
	w, h := backend.Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(400), h)
	assert.InDelta(t, 2.0, g.SystemManager.RendererSystem.Camera().Aspect, 1e-6)
	assert.Equal(t, [][2]uint32{{1280, 720}, {800, 400}}, sizes)

	require.NoError(t, e.Shutdown())
}
