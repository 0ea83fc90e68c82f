package loaders

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/bolt/engine/renderer/headless"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

func TestDecodeImage(t *testing.T) {
	img, err := DecodeImage(pngBytes(t, 2, 3), false)
	require.NoError(t, err)
	assert.Equal(t, uint8(4), img.ChannelCount)
	assert.Equal(t, uint32(2), img.Width)
	assert.Equal(t, uint32(3), img.Height)
	assert.Equal(t, "png", img.Format)
	require.Len(t, img.Pixels, 2*3*4)
	assert.Equal(t, []uint8{0, 0, 200, 255}, img.Pixels[0:4])
	assert.Equal(t, []uint8{40, 0, 200, 255}, img.Pixels[4:8])

	flipped, err := DecodeImage(pngBytes(t, 2, 3), true)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 80, 200, 255}, flipped.Pixels[0:4])

	_, err = DecodeImage([]byte("GIF89a"), false)
	assert.Error(t, err)
}

func TestImageLoader(t *testing.T) {
	location := filepath.Join(t.TempDir(), "albedo.png")
	require.NoError(t, os.WriteFile(location, pngBytes(t, 2, 2), 0o644))

	loader := &ImageLoader{}
	resource, err := loader.Load(location, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: true})
	require.NoError(t, err)
	assert.Equal(t, metadata.ResourceTypeImage, resource.ResourceType)
	assert.Equal(t, uint64(16), resource.DataSize)
	require.IsType(t, &metadata.ImageResourceData{}, resource.Data)

	require.NoError(t, loader.Unload(resource))
	assert.Nil(t, resource.Data)
}

func TestBuiltinShaderSources(t *testing.T) {
	vs, fs, err := BuiltinShaderSources(false)
	require.NoError(t, err)
	assert.Contains(t, vs, "uniform mat4 model")
	assert.NotContains(t, vs, "jointTransforms")
	assert.Contains(t, fs, "baseColor")

	skinnedVS, skinnedFS, err := BuiltinShaderSources(true)
	require.NoError(t, err)
	assert.Contains(t, skinnedVS, "jointTransforms")
	assert.Equal(t, fs, skinnedFS)
}

func TestModelLoader(t *testing.T) {
	location := filepath.Join(t.TempDir(), "triangle.glb")
	require.NoError(t, os.WriteFile(location, twoNodeGLB(t), 0o644))

	backend := headless.New()
	loader := &ModelLoader{Importer: NewGLTFLoader(backend)}
	resource, err := loader.Load(location, metadata.ResourceTypeModel, context.Background())
	require.NoError(t, err)
	assert.Equal(t, "triangle", resource.Name)
	model, ok := resource.Data.(*Model)
	require.True(t, ok)
	assert.Len(t, model.Meshes, 1)
	assert.NotZero(t, backend.LiveBuffers())

	require.NoError(t, loader.Unload(resource))
	assert.Zero(t, backend.LiveBuffers())
	assert.Error(t, loader.Unload(resource))
}

func TestBinaryLoader(t *testing.T) {
	location := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(location, []byte{1, 2, 3}, 0o644))

	resource, err := (&BinaryLoader{}).Load(location, metadata.ResourceTypeBinary, map[string]string{"name": "data"})
	require.NoError(t, err)
	assert.Equal(t, "data", resource.Name)
	assert.Equal(t, []byte{1, 2, 3}, resource.Data)
}
