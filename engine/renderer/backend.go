package renderer

import (
	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

// RendererBackend is the device command layer. Every GPU resource in the
// engine is created through one backend instance handed to its constructor,
// and must be created and destroyed on the thread that owns the device.
type RendererBackend interface {
	Initialize(appName string, width, height uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	Clear(colour math.Vec4)
	SetViewport(x, y int32, width, height uint32)
	SetDepthTest(enabled bool)
	SetBlending(enabled bool)
	SetBlendFunction(blend metadata.BlendFunction)
	SetCulling(enabled bool)
	SetCullFace(face metadata.CullFace)

	// data is one of []float32, []uint8, []uint16 or []uint32
	BufferCreate(target metadata.BufferTarget, data interface{}) (*metadata.Buffer, error)
	BufferDestroy(buffer *metadata.Buffer)

	VertexArrayCreate() (*metadata.VertexArray, error)
	VertexArrayDestroy(vao *metadata.VertexArray)
	VertexArrayBind(vao *metadata.VertexArray)
	VertexArrayUnbind()
	VertexAttributeLink(vao *metadata.VertexArray, buffer *metadata.Buffer, attribute metadata.VertexAttribute)
	IndexBufferBind(vao *metadata.VertexArray, buffer *metadata.Buffer)

	DrawElements(mode metadata.DrawMode, count uint32, indexType metadata.DataType, offset int)
	DrawElementsInstanced(mode metadata.DrawMode, count uint32, indexType metadata.DataType, offset int, instanceCount uint32)
	DrawArrays(mode metadata.DrawMode, first int32, count uint32)
	DrawArraysInstanced(mode metadata.DrawMode, first int32, count uint32, instanceCount uint32)

	TextureCreate(texture *metadata.Texture, pixels []uint8) error
	TextureDestroy(texture *metadata.Texture)
	TextureBind(texture *metadata.Texture, unit uint32)

	ShaderCreate(shader *metadata.Shader) error
	ShaderDestroy(shader *metadata.Shader)
	ShaderUse(shader *metadata.Shader) bool
	SetUniform(shader *metadata.Shader, uniform metadata.ShaderUniform) bool
}
