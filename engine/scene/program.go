package scene

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/renderer"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

type programUniform struct {
	uniform metadata.ShaderUniform
	dirty   bool
}

type programTexture struct {
	name    string
	unit    uint32
	texture *Texture
}

/**
 * @brief A shader program plus the uniform and texture state of one
 * material. Uniform values are cached per program and pushed to the device
 * on Activate when they changed.
 */
type Program struct {
	Name string
	/** @brief Transparent programs are drawn after opaque ones, back to front. */
	Transparent bool
	/** @brief Applied before drawing when Transparent is set. */
	Blend metadata.BlendFunction
	/** @brief CullFaceNone disables culling. */
	CullFace metadata.CullFace

	backend  renderer.RendererBackend
	shader   *metadata.Shader
	uniforms map[string]*programUniform
	textures []*programTexture
	deleted  bool
}

func NewProgram(backend renderer.RendererBackend, name, vertexSource, fragmentSource string) (*Program, error) {
	shader := &metadata.Shader{
		Name:           name,
		VertexSource:   vertexSource,
		FragmentSource: fragmentSource,
		State:          metadata.SHADER_STATE_NOT_CREATED,
	}
	if err := backend.ShaderCreate(shader); err != nil {
		return nil, errors.Wrapf(err, "failed to create program '%s'", name)
	}
	return &Program{
		Name:     name,
		Blend:    metadata.BlendFunction{Src: metadata.BlendOne, Dst: metadata.BlendOneMinusSrcAlpha},
		CullFace: metadata.CullFaceBack,
		backend:  backend,
		shader:   shader,
		uniforms: make(map[string]*programUniform),
	}, nil
}

func (p *Program) Shader() *metadata.Shader {
	return p.shader
}

func (p *Program) set(name string, uniformType metadata.ShaderUniformType, values []float32) {
	if current, ok := p.uniforms[name]; ok && current.uniform.Type == uniformType && equalValues(current.uniform.Values, values) {
		return
	}
	p.uniforms[name] = &programUniform{
		uniform: metadata.ShaderUniform{Name: name, Type: uniformType, Values: values},
		dirty:   true,
	}
}

func equalValues(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (p *Program) SetBool(name string, value bool) {
	v := float32(0)
	if value {
		v = 1
	}
	p.set(name, metadata.ShaderUniformTypeBool, []float32{v})
}

func (p *Program) SetInt(name string, value int32) {
	p.set(name, metadata.ShaderUniformTypeInt32, []float32{float32(value)})
}

func (p *Program) SetFloat(name string, value float32) {
	p.set(name, metadata.ShaderUniformTypeFloat32, []float32{value})
}

func (p *Program) SetVector2(name string, value math.Vec2) {
	p.set(name, metadata.ShaderUniformTypeFloat32_2, []float32{value.X, value.Y})
}

func (p *Program) SetVector3(name string, value math.Vec3) {
	p.set(name, metadata.ShaderUniformTypeFloat32_3, []float32{value.X, value.Y, value.Z})
}

func (p *Program) SetVector4(name string, value math.Vec4) {
	p.set(name, metadata.ShaderUniformTypeFloat32_4, []float32{value.X, value.Y, value.Z, value.W})
}

// SetMatrix2 takes the four column-major elements.
func (p *Program) SetMatrix2(name string, value [4]float32) {
	p.set(name, metadata.ShaderUniformTypeMatrix2, append([]float32(nil), value[:]...))
}

// SetMatrix3 takes the nine column-major elements.
func (p *Program) SetMatrix3(name string, value [9]float32) {
	p.set(name, metadata.ShaderUniformTypeMatrix3, append([]float32(nil), value[:]...))
}

func (p *Program) SetMatrix4(name string, value math.Mat4) {
	p.set(name, metadata.ShaderUniformTypeMatrix4, append([]float32(nil), value.Data[:]...))
}

func (p *Program) SetMatrix4Array(name string, values []math.Mat4) {
	data := make([]float32, 0, len(values)*16)
	for _, m := range values {
		data = append(data, m.Data[:]...)
	}
	p.set(name, metadata.ShaderUniformTypeMatrix4Array, data)
}

/**
 * @brief Binds texture to the sampler uniform name. Each new name takes the
 * next texture unit; setting an existing name swaps the texture in place.
 */
func (p *Program) SetTexture(name string, texture *Texture) {
	for _, t := range p.textures {
		if t.name == name {
			t.texture = texture
			return
		}
	}
	unit := uint32(len(p.textures))
	p.textures = append(p.textures, &programTexture{name: name, unit: unit, texture: texture})
	p.set(name, metadata.ShaderUniformTypeSampler, []float32{float32(unit)})
}

func (p *Program) Texture(name string) *Texture {
	for _, t := range p.textures {
		if t.name == name {
			return t.texture
		}
	}
	return nil
}

// Uniform returns the cached value of a uniform.
func (p *Program) Uniform(name string) (metadata.ShaderUniform, bool) {
	u, ok := p.uniforms[name]
	if !ok {
		return metadata.ShaderUniform{}, false
	}
	return u.uniform, true
}

/** @brief Uses the program on the device, binds its textures and flushes changed uniforms. */
func (p *Program) Activate() bool {
	if p.deleted {
		return false
	}
	if !p.backend.ShaderUse(p.shader) {
		core.LogWarn("program '%s' could not be activated", p.Name)
		return false
	}
	p.BindTextures()
	for _, u := range p.uniforms {
		if !u.dirty {
			continue
		}
		if p.backend.SetUniform(p.shader, u.uniform) {
			u.dirty = false
		}
	}
	return true
}

func (p *Program) BindTextures() {
	for _, t := range p.textures {
		if t.texture == nil {
			continue
		}
		if err := t.texture.Bind(t.unit); err != nil {
			core.LogWarn("program '%s': %s", p.Name, err)
		}
	}
}

// Delete destroys the shader. Textures are owned by whoever created them.
func (p *Program) Delete() {
	if p.deleted {
		return
	}
	p.backend.ShaderDestroy(p.shader)
	p.uniforms = nil
	p.textures = nil
	p.deleted = true
}

func (p *Program) Deleted() bool {
	return p.deleted
}
