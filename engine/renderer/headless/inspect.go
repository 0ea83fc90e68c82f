package headless

import "github.com/spaghettifunk/bolt/engine/renderer/metadata"

// Commands returns the recorded commands since the last Reset.
func (b *Backend) Commands() []Command {
	return b.commands
}

// Draws returns the recorded draw commands since the last Reset.
func (b *Backend) Draws() []Command {
	draws := []Command{}
	for _, c := range b.commands {
		if c.IsDraw() {
			draws = append(draws, c)
		}
	}
	return draws
}

func (b *Backend) Reset() {
	b.commands = b.commands[:0]
}

func (b *Backend) Frame() uint64 {
	return b.frame
}

func (b *Backend) Size() (uint32, uint32) {
	return b.width, b.height
}

func (b *Backend) LiveBuffers() int {
	return len(b.buffers)
}

func (b *Backend) LiveVertexArrays() int {
	return len(b.vertexArrays)
}

func (b *Backend) LiveTextures() int {
	return len(b.textures)
}

func (b *Backend) LiveShaders() int {
	return len(b.shaders)
}

// BufferData returns a copy of what was uploaded to the buffer.
func (b *Backend) BufferData(id uint32) (interface{}, bool) {
	record, ok := b.buffers[id]
	if !ok {
		return nil, false
	}
	return record.data, true
}

// Attributes returns the attribute layout linked to a vertex array, keyed by slot.
func (b *Backend) Attributes(vao uint32) map[uint32]metadata.VertexAttribute {
	record, ok := b.vertexArrays[vao]
	if !ok {
		return nil
	}
	return record.attributes
}

// IndexBuffer returns the index buffer bound to a vertex array.
func (b *Backend) IndexBuffer(vao uint32) (uint32, bool) {
	record, ok := b.vertexArrays[vao]
	if !ok || record.indexBuffer == 0 {
		return 0, false
	}
	return record.indexBuffer, true
}

// Uniform returns the last value pushed for name on shader.
func (b *Backend) Uniform(shader uint32, name string) (metadata.ShaderUniform, bool) {
	record, ok := b.shaders[shader]
	if !ok {
		return metadata.ShaderUniform{}, false
	}
	u, ok := record.uniforms[name]
	return u, ok
}

// State reports the current depth, blend and cull toggles.
func (b *Backend) State() (depthTest, blending, culling bool, face metadata.CullFace) {
	return b.depthTest, b.blending, b.culling, b.cullFace
}
