// Package headless implements the device layer in memory. It records every
// command it receives, which makes it the backend of choice for tests and
// for running the engine without a window.
package headless

import (
	"fmt"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

type Op int

const (
	OpClear Op = iota
	OpViewport
	OpDepthTest
	OpBlending
	OpBlendFunction
	OpCulling
	OpCullFace
	OpVertexArrayBind
	OpVertexArrayUnbind
	OpDrawElements
	OpDrawElementsInstanced
	OpDrawArrays
	OpDrawArraysInstanced
	OpTextureBind
	OpShaderUse
	OpSetUniform
)

func (o Op) String() string {
	switch o {
	case OpClear:
		return "clear"
	case OpViewport:
		return "viewport"
	case OpDepthTest:
		return "depth_test"
	case OpBlending:
		return "blending"
	case OpBlendFunction:
		return "blend_function"
	case OpCulling:
		return "culling"
	case OpCullFace:
		return "cull_face"
	case OpVertexArrayBind:
		return "vertex_array_bind"
	case OpVertexArrayUnbind:
		return "vertex_array_unbind"
	case OpDrawElements:
		return "draw_elements"
	case OpDrawElementsInstanced:
		return "draw_elements_instanced"
	case OpDrawArrays:
		return "draw_arrays"
	case OpDrawArraysInstanced:
		return "draw_arrays_instanced"
	case OpTextureBind:
		return "texture_bind"
	case OpShaderUse:
		return "shader_use"
	case OpSetUniform:
		return "set_uniform"
	}
	return "unknown"
}

// Command is one recorded device call. Only the fields relevant to Op are set.
type Command struct {
	Op          Op
	VertexArray uint32
	Shader      uint32
	Texture     uint32
	Unit        uint32
	Mode        metadata.DrawMode
	Count       uint32
	Instances   uint32
	IndexType   metadata.DataType
	Enabled     bool
	Blend       metadata.BlendFunction
	Face        metadata.CullFace
	Uniform     metadata.ShaderUniform
	Colour      math.Vec4
}

func (c Command) IsDraw() bool {
	switch c.Op {
	case OpDrawElements, OpDrawElementsInstanced, OpDrawArrays, OpDrawArraysInstanced:
		return true
	}
	return false
}

type bufferRecord struct {
	buffer *metadata.Buffer
	data   interface{}
}

type vertexArrayRecord struct {
	attributes  map[uint32]metadata.VertexAttribute
	buffers     map[uint32]uint32
	indexBuffer uint32
}

type shaderRecord struct {
	shader   *metadata.Shader
	uniforms map[string]metadata.ShaderUniform
}

// Backend is a recording RendererBackend.
type Backend struct {
	width, height uint32
	frame         uint64
	nextID        uint32

	buffers      map[uint32]*bufferRecord
	vertexArrays map[uint32]*vertexArrayRecord
	textures     map[uint32]*metadata.Texture
	shaders      map[uint32]*shaderRecord

	boundVertexArray uint32
	activeShader     uint32

	depthTest bool
	blending  bool
	culling   bool
	blend     metadata.BlendFunction
	cullFace  metadata.CullFace

	commands []Command
	// Recording can be disabled for long running sessions.
	Recording bool
}

func New() *Backend {
	return &Backend{
		buffers:      make(map[uint32]*bufferRecord),
		vertexArrays: make(map[uint32]*vertexArrayRecord),
		textures:     make(map[uint32]*metadata.Texture),
		shaders:      make(map[uint32]*shaderRecord),
		Recording:    true,
	}
}

func (b *Backend) record(c Command) {
	if b.Recording {
		b.commands = append(b.commands, c)
	}
}

func (b *Backend) newID() uint32 {
	b.nextID++
	return b.nextID
}

func (b *Backend) Initialize(appName string, width, height uint32) error {
	b.width, b.height = width, height
	core.LogInfo("headless backend initialized for '%s' (%dx%d)", appName, width, height)
	return nil
}

func (b *Backend) Shutdown() error {
	if n := len(b.buffers) + len(b.vertexArrays) + len(b.textures) + len(b.shaders); n > 0 {
		core.LogWarn("headless backend shutting down with %d live resources", n)
	}
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	b.width, b.height = width, height
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	b.frame++
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.VertexArrayUnbind()
	return nil
}

func (b *Backend) Clear(colour math.Vec4) {
	b.record(Command{Op: OpClear, Colour: colour})
}

func (b *Backend) SetViewport(x, y int32, width, height uint32) {
	b.record(Command{Op: OpViewport, Count: width * height})
}

func (b *Backend) SetDepthTest(enabled bool) {
	b.depthTest = enabled
	b.record(Command{Op: OpDepthTest, Enabled: enabled})
}

func (b *Backend) SetBlending(enabled bool) {
	b.blending = enabled
	b.record(Command{Op: OpBlending, Enabled: enabled})
}

func (b *Backend) SetBlendFunction(blend metadata.BlendFunction) {
	b.blend = blend
	b.record(Command{Op: OpBlendFunction, Blend: blend})
}

func (b *Backend) SetCulling(enabled bool) {
	b.culling = enabled
	b.record(Command{Op: OpCulling, Enabled: enabled})
}

func (b *Backend) SetCullFace(face metadata.CullFace) {
	b.cullFace = face
	b.record(Command{Op: OpCullFace, Face: face})
}

func (b *Backend) BufferCreate(target metadata.BufferTarget, data interface{}) (*metadata.Buffer, error) {
	buffer := &metadata.Buffer{Target: target}
	var stored interface{}
	switch d := data.(type) {
	case []float32:
		buffer.DataType, buffer.ElementCount = metadata.DataTypeFloat, uint32(len(d))
		stored = append([]float32(nil), d...)
	case []uint8:
		buffer.DataType, buffer.ElementCount = metadata.DataTypeUnsignedByte, uint32(len(d))
		stored = append([]uint8(nil), d...)
	case []uint16:
		buffer.DataType, buffer.ElementCount = metadata.DataTypeUnsignedShort, uint32(len(d))
		stored = append([]uint16(nil), d...)
	case []uint32:
		buffer.DataType, buffer.ElementCount = metadata.DataTypeUnsignedInt, uint32(len(d))
		stored = append([]uint32(nil), d...)
	default:
		return nil, fmt.Errorf("unsupported buffer data %T", data)
	}
	buffer.Size = uint64(buffer.ElementCount) * uint64(buffer.DataType.Size())
	buffer.ID = b.newID()
	b.buffers[buffer.ID] = &bufferRecord{buffer: buffer, data: stored}
	return buffer, nil
}

func (b *Backend) BufferDestroy(buffer *metadata.Buffer) {
	if buffer == nil {
		return
	}
	delete(b.buffers, buffer.ID)
	buffer.ID = 0
}

func (b *Backend) VertexArrayCreate() (*metadata.VertexArray, error) {
	vao := &metadata.VertexArray{ID: b.newID()}
	b.vertexArrays[vao.ID] = &vertexArrayRecord{
		attributes: make(map[uint32]metadata.VertexAttribute),
		buffers:    make(map[uint32]uint32),
	}
	return vao, nil
}

func (b *Backend) VertexArrayDestroy(vao *metadata.VertexArray) {
	if vao == nil {
		return
	}
	delete(b.vertexArrays, vao.ID)
	if b.boundVertexArray == vao.ID {
		b.boundVertexArray = 0
	}
	vao.ID = 0
}

func (b *Backend) VertexArrayBind(vao *metadata.VertexArray) {
	if vao == nil {
		return
	}
	b.boundVertexArray = vao.ID
	b.record(Command{Op: OpVertexArrayBind, VertexArray: vao.ID})
}

func (b *Backend) VertexArrayUnbind() {
	if b.boundVertexArray == 0 {
		return
	}
	b.boundVertexArray = 0
	b.record(Command{Op: OpVertexArrayUnbind})
}

func (b *Backend) VertexAttributeLink(vao *metadata.VertexArray, buffer *metadata.Buffer, attribute metadata.VertexAttribute) {
	record, ok := b.vertexArrays[vao.ID]
	if !ok || buffer == nil {
		core.LogWarn("headless: attribute link on unknown vertex array %d", vao.ID)
		return
	}
	record.attributes[attribute.Location] = attribute
	record.buffers[attribute.Location] = buffer.ID
}

func (b *Backend) IndexBufferBind(vao *metadata.VertexArray, buffer *metadata.Buffer) {
	if record, ok := b.vertexArrays[vao.ID]; ok && buffer != nil {
		record.indexBuffer = buffer.ID
	}
}

func (b *Backend) DrawElements(mode metadata.DrawMode, count uint32, indexType metadata.DataType, offset int) {
	b.record(b.drawCommand(OpDrawElements, mode, count, indexType, 0))
}

func (b *Backend) DrawElementsInstanced(mode metadata.DrawMode, count uint32, indexType metadata.DataType, offset int, instanceCount uint32) {
	b.record(b.drawCommand(OpDrawElementsInstanced, mode, count, indexType, instanceCount))
}

func (b *Backend) DrawArrays(mode metadata.DrawMode, first int32, count uint32) {
	b.record(b.drawCommand(OpDrawArrays, mode, count, 0, 0))
}

func (b *Backend) DrawArraysInstanced(mode metadata.DrawMode, first int32, count uint32, instanceCount uint32) {
	b.record(b.drawCommand(OpDrawArraysInstanced, mode, count, 0, instanceCount))
}

func (b *Backend) drawCommand(op Op, mode metadata.DrawMode, count uint32, indexType metadata.DataType, instances uint32) Command {
	return Command{
		Op:          op,
		VertexArray: b.boundVertexArray,
		Shader:      b.activeShader,
		Mode:        mode,
		Count:       count,
		IndexType:   indexType,
		Instances:   instances,
		Enabled:     b.blending,
		Blend:       b.blend,
		Face:        b.cullFace,
	}
}

func (b *Backend) TextureCreate(texture *metadata.Texture, pixels []uint8) error {
	expected := int(texture.Width) * int(texture.Height) * int(texture.ChannelCount)
	if len(pixels) != expected {
		return fmt.Errorf("texture '%s' expects %d bytes, got %d", texture.Name, expected, len(pixels))
	}
	texture.ID = b.newID()
	texture.Generation++
	b.textures[texture.ID] = texture
	return nil
}

func (b *Backend) TextureDestroy(texture *metadata.Texture) {
	if texture == nil {
		return
	}
	delete(b.textures, texture.ID)
	texture.ID = 0
}

func (b *Backend) TextureBind(texture *metadata.Texture, unit uint32) {
	if texture == nil {
		return
	}
	b.record(Command{Op: OpTextureBind, Texture: texture.ID, Unit: unit})
}

func (b *Backend) ShaderCreate(shader *metadata.Shader) error {
	if shader.VertexSource == "" || shader.FragmentSource == "" {
		return fmt.Errorf("shader '%s' is missing a stage source", shader.Name)
	}
	shader.ID = b.newID()
	shader.State = metadata.SHADER_STATE_INITIALIZED
	b.shaders[shader.ID] = &shaderRecord{shader: shader, uniforms: make(map[string]metadata.ShaderUniform)}
	return nil
}

func (b *Backend) ShaderDestroy(shader *metadata.Shader) {
	if shader == nil {
		return
	}
	delete(b.shaders, shader.ID)
	if b.activeShader == shader.ID {
		b.activeShader = 0
	}
	shader.ID = 0
	shader.State = metadata.SHADER_STATE_DESTROYED
}

func (b *Backend) ShaderUse(shader *metadata.Shader) bool {
	if shader == nil {
		return false
	}
	if _, ok := b.shaders[shader.ID]; !ok {
		return false
	}
	b.activeShader = shader.ID
	b.record(Command{Op: OpShaderUse, Shader: shader.ID})
	return true
}

func (b *Backend) SetUniform(shader *metadata.Shader, uniform metadata.ShaderUniform) bool {
	record, ok := b.shaders[shader.ID]
	if !ok {
		return false
	}
	uniform.Values = append([]float32(nil), uniform.Values...)
	record.uniforms[uniform.Name] = uniform
	b.record(Command{Op: OpSetUniform, Shader: shader.ID, Uniform: uniform})
	return true
}
