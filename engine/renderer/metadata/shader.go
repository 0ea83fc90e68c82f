package metadata

/**
 * @brief Represents the current state of a given shader.
 */
type ShaderState int

const (
	/** @brief The shader has not yet gone through the creation process, and is unusable.*/
	SHADER_STATE_NOT_CREATED ShaderState = iota
	/** @brief The shader is compiled and linked, and is ready for use.*/
	SHADER_STATE_INITIALIZED
	/** @brief The shader was destroyed. */
	SHADER_STATE_DESTROYED
)

/**
 * @brief Represents a shader program on the device.
 */
type Shader struct {
	/** @brief The shader identifier */
	ID   uint32
	Name string
	/** @brief GLSL sources the program was built from. */
	VertexSource   string
	FragmentSource string
	State          ShaderState
}

type ShaderUniformType uint

const (
	ShaderUniformTypeBool ShaderUniformType = iota
	ShaderUniformTypeInt32
	ShaderUniformTypeFloat32
	ShaderUniformTypeFloat32_2
	ShaderUniformTypeFloat32_3
	ShaderUniformTypeFloat32_4
	ShaderUniformTypeMatrix2
	ShaderUniformTypeMatrix3
	ShaderUniformTypeMatrix4
	ShaderUniformTypeMatrix4Array
	ShaderUniformTypeSampler
)

func (t ShaderUniformType) String() string {
	switch t {
	case ShaderUniformTypeBool:
		return "bool"
	case ShaderUniformTypeInt32:
		return "int"
	case ShaderUniformTypeFloat32:
		return "float"
	case ShaderUniformTypeFloat32_2:
		return "vec2"
	case ShaderUniformTypeFloat32_3:
		return "vec3"
	case ShaderUniformTypeFloat32_4:
		return "vec4"
	case ShaderUniformTypeMatrix2:
		return "mat2"
	case ShaderUniformTypeMatrix3:
		return "mat3"
	case ShaderUniformTypeMatrix4:
		return "mat4"
	case ShaderUniformTypeMatrix4Array:
		return "mat4[]"
	case ShaderUniformTypeSampler:
		return "sampler2D"
	}
	return "unknown"
}

/**
 * @brief A uniform value pushed to the device. Values holds the flattened
 * floats (or the int/bool/sampler unit as a single element).
 */
type ShaderUniform struct {
	Name   string
	Type   ShaderUniformType
	Values []float32
}
