package headless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/bolt/engine/renderer"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

var _ renderer.RendererBackend = (*Backend)(nil)

func TestBufferLifecycle(t *testing.T) {
	b := New()

	buf, err := b.BufferCreate(metadata.BufferTargetArray, []float32{1, 2, 3})
	require.NoError(t, err)
	assert.NotZero(t, buf.ID)
	assert.Equal(t, metadata.DataTypeFloat, buf.DataType)
	assert.Equal(t, uint32(3), buf.ElementCount)
	assert.Equal(t, uint64(12), buf.Size)
	assert.Equal(t, 1, b.LiveBuffers())

	data, ok := b.BufferData(buf.ID)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, data)

	b.BufferDestroy(buf)
	assert.Zero(t, b.LiveBuffers())
	assert.Zero(t, buf.ID)

	_, err = b.BufferCreate(metadata.BufferTargetArray, []int64{1})
	assert.Error(t, err)
}

func TestDrawRecordsBoundState(t *testing.T) {
	b := New()
	shader := &metadata.Shader{Name: "s", VertexSource: "v", FragmentSource: "f"}
	require.NoError(t, b.ShaderCreate(shader))
	vao, err := b.VertexArrayCreate()
	require.NoError(t, err)

	require.True(t, b.ShaderUse(shader))
	b.VertexArrayBind(vao)
	b.DrawElementsInstanced(metadata.DrawModeTriangles, 6, metadata.DataTypeUnsignedInt, 0, 4)
	require.NoError(t, b.EndFrame(0))

	draws := b.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, vao.ID, draws[0].VertexArray)
	assert.Equal(t, shader.ID, draws[0].Shader)
	assert.Equal(t, uint32(4), draws[0].Instances)
	assert.Equal(t, OpVertexArrayUnbind, b.Commands()[len(b.Commands())-1].Op)

	b.Reset()
	assert.Empty(t, b.Commands())
}

func TestUniformsAreCopied(t *testing.T) {
	b := New()
	shader := &metadata.Shader{Name: "s", VertexSource: "v", FragmentSource: "f"}
	require.NoError(t, b.ShaderCreate(shader))

	values := []float32{1, 2}
	require.True(t, b.SetUniform(shader, metadata.ShaderUniform{Name: "u", Type: metadata.ShaderUniformTypeFloat32_2, Values: values}))
	values[0] = 9

	u, ok := b.Uniform(shader.ID, "u")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, u.Values)

	b.ShaderDestroy(shader)
	assert.Equal(t, metadata.SHADER_STATE_DESTROYED, shader.State)
	assert.False(t, b.ShaderUse(shader))
}

func TestTextureSizeValidation(t *testing.T) {
	b := New()
	tex := &metadata.Texture{Name: "t", Width: 2, Height: 2, ChannelCount: 4}
	assert.Error(t, b.TextureCreate(tex, make([]uint8, 3)))
	require.NoError(t, b.TextureCreate(tex, make([]uint8, 16)))
	assert.Equal(t, 1, b.LiveTextures())
	assert.Equal(t, uint32(1), tex.Generation)
}
