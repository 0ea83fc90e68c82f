package metadata

/** @brief Primitive topology, numbered like the glTF mesh primitive modes. */
type DrawMode int

const (
	DrawModePoints DrawMode = iota
	DrawModeLines
	DrawModeLineLoop
	DrawModeLineStrip
	DrawModeTriangles
	DrawModeTriangleStrip
	DrawModeTriangleFan
)

func (m DrawMode) String() string {
	switch m {
	case DrawModePoints:
		return "POINTS"
	case DrawModeLines:
		return "LINES"
	case DrawModeLineLoop:
		return "LINE_LOOP"
	case DrawModeLineStrip:
		return "LINE_STRIP"
	case DrawModeTriangles:
		return "TRIANGLES"
	case DrawModeTriangleStrip:
		return "TRIANGLE_STRIP"
	case DrawModeTriangleFan:
		return "TRIANGLE_FAN"
	}
	return "UNKNOWN"
}

/** @brief Blend factors used by transparent materials. */
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendDstColor
	BlendOneMinusDstColor
)

/** @brief A source/destination blend factor pair. */
type BlendFunction struct {
	Src BlendFactor
	Dst BlendFactor
}

/**
 * @brief Face culling mode of a material. CullFaceNone disables culling
 * instead of selecting a face.
 */
type CullFace int

const (
	CullFaceNone CullFace = iota
	CullFaceBack
	CullFaceFront
	CullFaceFrontAndBack
)

func (c CullFace) String() string {
	switch c {
	case CullFaceNone:
		return "NONE"
	case CullFaceBack:
		return "BACK"
	case CullFaceFront:
		return "FRONT"
	case CullFaceFrontAndBack:
		return "FRONT_AND_BACK"
	}
	return "UNKNOWN"
}
