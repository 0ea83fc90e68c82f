package loaders

import (
	"encoding/json"

	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

const (
	extensionDraco              = "KHR_draco_mesh_compression"
	extensionSpecularGlossiness = "KHR_materials_pbrSpecularGlossiness"
)

/** @brief Payload of KHR_draco_mesh_compression on a primitive. */
type dracoExtension struct {
	BufferView uint32         `json:"bufferView"`
	Attributes map[string]int `json:"attributes"`
}

// decodeExtension reads an extension value into out. Extensions without a
// registered factory are kept as raw JSON by the document.
func decodeExtension(value interface{}, out interface{}) error {
	raw, ok := value.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(value); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, out)
}

var componentTypes = map[gltf.ComponentType]ComponentType{
	gltf.ComponentByte:   ComponentByte,
	gltf.ComponentUbyte:  ComponentUnsignedByte,
	gltf.ComponentShort:  ComponentShort,
	gltf.ComponentUshort: ComponentUnsignedShort,
	gltf.ComponentUint:   ComponentUnsignedInt,
	gltf.ComponentFloat:  ComponentFloat,
}

// componentType maps a document component type to its GL code.
func componentType(c gltf.ComponentType) ComponentType {
	if code, ok := componentTypes[c]; ok {
		return code
	}
	return ComponentFloat
}

var drawModes = map[gltf.PrimitiveMode]metadata.DrawMode{
	gltf.PrimitivePoints:        metadata.DrawModePoints,
	gltf.PrimitiveLines:         metadata.DrawModeLines,
	gltf.PrimitiveLineLoop:      metadata.DrawModeLineLoop,
	gltf.PrimitiveLineStrip:     metadata.DrawModeLineStrip,
	gltf.PrimitiveTriangles:     metadata.DrawModeTriangles,
	gltf.PrimitiveTriangleStrip: metadata.DrawModeTriangleStrip,
	gltf.PrimitiveTriangleFan:   metadata.DrawModeTriangleFan,
}

func drawMode(mode gltf.PrimitiveMode) metadata.DrawMode {
	if m, ok := drawModes[mode]; ok {
		return m
	}
	return metadata.DrawModeTriangles
}
