package assets

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/bolt/engine/assets/loaders"
	"github.com/spaghettifunk/bolt/engine/renderer/headless"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

// writeTriangle writes a .gltf with an external .bin buffer into dir.
func writeTriangle(t *testing.T, dir, name string) {
	t.Helper()
	var bin bytes.Buffer
	require.NoError(t, binary.Write(&bin, binary.LittleEndian, [9]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}))

	doc := map[string]interface{}{
		"asset":       map[string]interface{}{"version": "2.0"},
		"buffers":     []interface{}{map[string]interface{}{"uri": name + ".bin", "byteLength": bin.Len()}},
		"bufferViews": []interface{}{map[string]interface{}{"buffer": 0, "byteLength": bin.Len()}},
		"accessors":   []interface{}{map[string]interface{}{"bufferView": 0, "componentType": 5126, "type": "VEC3", "count": 3}},
		"meshes": []interface{}{map[string]interface{}{"primitives": []interface{}{
			map[string]interface{}{"attributes": map[string]int{"POSITION": 0}},
		}}},
		"nodes":  []interface{}{map[string]interface{}{"mesh": 0}},
		"scenes": []interface{}{map[string]interface{}{"nodes": []int{0}}},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".gltf"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".bin"), bin.Bytes(), 0o644))
}

func newTestManager(t *testing.T, watch bool) (*AssetManager, string, *headless.Backend) {
	t.Helper()
	dir := t.TempDir()
	writeTriangle(t, filepath.Join(dir, "scenes"), "triangle")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	backend := headless.New()
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir, watch, loaders.NewGLTFLoader(backend)))
	t.Cleanup(func() { _ = am.Shutdown() })
	return am, dir, backend
}

func TestAssetManagerIndex(t *testing.T) {
	am, dir, _ := newTestManager(t, false)

	assert.Equal(t, []string{"scenes/triangle.gltf"}, am.List(metadata.ResourceTypeModel))
	assert.Equal(t, []string{"scenes/triangle.bin"}, am.List(metadata.ResourceTypeBinary))

	info, ok := am.Get("scenes/triangle.gltf")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "scenes", "triangle.gltf"), info.Path)
	assert.NotZero(t, info.Size)

	_, ok = am.Get("notes.txt")
	assert.False(t, ok)
}

func TestAssetManagerLoadModel(t *testing.T) {
	am, _, backend := newTestManager(t, false)

	model, err := am.LoadModel(context.Background(), "scenes/triangle.gltf")
	require.NoError(t, err)
	require.Len(t, model.Root.Drawables(), 1)
	assert.NotZero(t, backend.LiveBuffers())

	info, _ := am.Get("scenes/triangle.gltf")
	assert.False(t, info.LastLoaded.IsZero())

	resource := &metadata.Resource{Name: model.Name, ResourceType: metadata.ResourceTypeModel, Data: model}
	require.NoError(t, am.UnloadAsset(resource))
	assert.Zero(t, backend.LiveBuffers())
}

func TestAssetManagerLoadErrors(t *testing.T) {
	am, _, _ := newTestManager(t, false)

	_, err := am.LoadModel(context.Background(), "scenes/missing.glb")
	assert.ErrorIs(t, err, ErrAssetNotFound)

	_, err = am.LoadAsset("scenes/triangle.bin", metadata.ResourceTypeModel, nil)
	assert.Error(t, err)

	resource, err := am.LoadAsset("scenes/triangle.bin", metadata.ResourceTypeBinary, nil)
	require.NoError(t, err)
	assert.Len(t, resource.Data, 36)
}

func TestAssetManagerReportsChangedModels(t *testing.T) {
	am, dir, _ := newTestManager(t, true)

	var mu sync.Mutex
	changed := []string{}
	am.OnModelChanged(func(name string) {
		mu.Lock()
		defer mu.Unlock()
		changed = append(changed, name)
	})

	writeTriangle(t, filepath.Join(dir, "scenes"), "triangle")
	require.Eventually(t, func() bool {
		am.Update()
		mu.Lock()
		defer mu.Unlock()
		return len(changed) > 0
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "scenes/triangle.gltf", changed[0])
}

func TestDetermineAssetType(t *testing.T) {
	tests := map[string]metadata.ResourceType{
		"a/b.GLB":     metadata.ResourceTypeModel,
		"scene.gltf":  metadata.ResourceTypeModel,
		"albedo.webp": metadata.ResourceTypeImage,
		"buffer.bin":  metadata.ResourceTypeBinary,
		"skin.vert":   metadata.ResourceTypeText,
	}
	for path, want := range tests {
		got, ok := determineAssetType(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
	_, ok := determineAssetType("readme.md")
	assert.False(t, ok)
}
