package loaders

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/scene"
)

type primitiveGeometry struct {
	positions []float32
	normals   []float32
	uvs       []float32
	joints    []float32
	weights   []float32
	indices   []uint32
}

/**
 * @brief Gives every node referencing a mesh one drawable child per
 * primitive. Meshes are shared between nodes using the same (mesh, skin)
 * pairing.
 */
func (imp *importer) buildMeshes() error {
	for i, n := range imp.doc.Nodes {
		if n.Mesh == nil {
			continue
		}
		key := meshKey{mesh: int(*n.Mesh), skin: -1}
		if n.Skin != nil {
			key.skin = int(*n.Skin)
		}
		results, ok := imp.meshes[key]
		if !ok {
			var err error
			if results, err = imp.buildMesh(key); err != nil {
				return err
			}
			imp.meshes[key] = results
		}

		node := imp.model.Nodes[i]
		for p, result := range results {
			if result == nil {
				continue
			}
			drawable := scene.NewDrawable(fmt.Sprintf("%s_primitive_%d", result.mesh.Name, p), result.mesh, result.program)
			if err := node.AddChild(drawable); err != nil {
				return core.NewImportError(core.ErrMissingData, "mesh", err)
			}
		}
	}
	return nil
}

func (imp *importer) buildMesh(key meshKey) ([]*primitiveResult, error) {
	op := fmt.Sprintf("mesh %d", key.mesh)
	if key.mesh < 0 || key.mesh >= len(imp.doc.Meshes) || imp.doc.Meshes[key.mesh] == nil {
		return nil, core.NewImportError(core.ErrMissingData, op, errors.New("mesh does not exist"))
	}
	if key.skin < -1 || key.skin >= len(imp.doc.Skins) || (key.skin >= 0 && imp.doc.Skins[key.skin] == nil) {
		return nil, core.NewImportError(core.ErrMissingData, op, errors.Errorf("skin %d does not exist", key.skin))
	}
	gm := imp.doc.Meshes[key.mesh]
	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("mesh_%d", key.mesh)
	}

	results := make([]*primitiveResult, len(gm.Primitives))
	for p, prim := range gm.Primitives {
		primOp := fmt.Sprintf("%s primitive %d", op, p)
		if prim == nil {
			return nil, core.NewImportError(core.ErrMissingData, primOp, errors.New("null primitive"))
		}
		geometry, err := imp.readPrimitive(prim, primOp)
		if err != nil {
			return nil, err
		}
		if geometry == nil {
			continue
		}

		buffers := scene.MeshBuffers{
			Positions: geometry.positions,
			Normals:   geometry.normals,
			UVs:       geometry.uvs,
			Indices:   geometry.indices,
		}
		options := scene.MeshOptions{DrawType: drawMode(prim.Mode)}
		skinned := key.skin >= 0 && geometry.joints != nil && geometry.weights != nil

		var mesh *scene.Mesh
		if skinned {
			mesh, err = scene.NewSkinMesh(imp.backend, buffers, options)
		} else {
			mesh, err = scene.NewMesh(imp.backend, buffers, options)
		}
		if err != nil {
			return nil, core.NewImportError(core.ErrInvalidGeometry, primOp, err)
		}
		mesh.Name = name
		imp.model.Meshes = append(imp.model.Meshes, mesh)

		if skinned && mesh.Bound() {
			if err := mesh.SetAttribute("aJoints", scene.AttributeSlotJoints, 4, geometry.joints); err != nil {
				return nil, core.NewImportError(core.ErrInvalidGeometry, primOp, err)
			}
			if err := mesh.SetAttribute("aWeights", scene.AttributeSlotWeights, 4, geometry.weights); err != nil {
				return nil, core.NewImportError(core.ErrInvalidGeometry, primOp, err)
			}
		}

		program, err := imp.program(prim.Material, skinned)
		if err != nil {
			return nil, err
		}
		results[p] = &primitiveResult{mesh: mesh, program: program}
	}
	return results, nil
}

// readPrimitive returns nil geometry when the primitive is skipped.
func (imp *importer) readPrimitive(prim *gltf.Primitive, op string) (*primitiveGeometry, error) {
	if raw, ok := prim.Extensions[extensionDraco]; ok {
		if imp.decoder == nil {
			core.LogWarn("%s: %s uses %s and no mesh decoder is configured, skipping", core.ErrUnsupportedFeature, op, extensionDraco)
			return nil, nil
		}
		return imp.readCompressed(prim, raw, op)
	}
	if prim.Attributes == nil {
		return nil, core.NewImportError(core.ErrMissingData, op, errors.New("primitive has no attributes"))
	}
	positionIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, core.NewImportError(core.ErrMissingData, op, errors.New("missing POSITION accessor"))
	}

	geometry := &primitiveGeometry{}
	positions, accessor, err := imp.readAccessor(positionIndex)
	if err != nil {
		return nil, err
	}
	if accessor.Count == 0 || accessor.Type != gltf.AccessorVec3 {
		return nil, core.NewImportError(core.ErrMissingData, op, errors.Errorf("POSITION accessor %d is empty or not VEC3", positionIndex))
	}
	geometry.positions = positions.Float32s()

	optional := []struct {
		name       string
		normalized bool
		target     *[]float32
	}{
		{gltf.NORMAL, false, &geometry.normals},
		{gltf.TEXCOORD_0, true, &geometry.uvs},
		{gltf.JOINTS_0, false, &geometry.joints},
		{gltf.WEIGHTS_0, true, &geometry.weights},
	}
	for _, attribute := range optional {
		index, ok := prim.Attributes[attribute.name]
		if !ok {
			continue
		}
		values, accessor, err := imp.readAccessor(index)
		if err != nil {
			return nil, err
		}
		*attribute.target = floats(values, attribute.normalized && accessor.Normalized)
	}

	if prim.Indices != nil {
		indices, accessor, err := imp.readAccessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		if accessor.Type != gltf.AccessorScalar {
			return nil, core.NewImportError(core.ErrMissingData, op, errors.Errorf("index accessor %d is %s", *prim.Indices, accessor.Type))
		}
		geometry.indices = indices.Uint32s()
	}
	return geometry, nil
}

func floats(values TypedArray, normalized bool) []float32 {
	if normalized {
		return values.Normalized()
	}
	return values.Float32s()
}

/**
 * @brief Produces primitive geometry through the mesh decoder. The decoded
 * point count must match the count declared by the POSITION accessor.
 */
func (imp *importer) readCompressed(prim *gltf.Primitive, raw interface{}, op string) (*primitiveGeometry, error) {
	var ext dracoExtension
	if err := decodeExtension(raw, &ext); err != nil {
		return nil, core.NewImportError(core.ErrMissingData, op, errors.Wrap(err, "malformed draco extension"))
	}
	positionIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok || int(positionIndex) >= len(imp.doc.Accessors) || imp.doc.Accessors[positionIndex] == nil {
		return nil, core.NewImportError(core.ErrMissingData, op, errors.New("missing POSITION accessor"))
	}
	declared := int(imp.doc.Accessors[positionIndex].Count)

	data, _, err := imp.bufferView(ext.BufferView)
	if err != nil {
		return nil, core.NewImportError(core.ErrMissingData, op, err)
	}
	decoded, err := imp.decoder.Decode(data)
	if err != nil {
		return nil, core.NewImportError(core.ErrGeometryMismatch, op, errors.Wrap(err, "decoder failed"))
	}
	if points := decoded.PointCount(); points != declared {
		return nil, core.NewImportError(core.ErrGeometryMismatch, op, errors.Errorf("decoder produced %d points, accessor declares %d", points, declared))
	}

	geometry := &primitiveGeometry{}
	targets := []struct {
		name     string
		required bool
		target   *[]float32
	}{
		{gltf.POSITION, true, &geometry.positions},
		{gltf.NORMAL, false, &geometry.normals},
		{gltf.TEXCOORD_0, false, &geometry.uvs},
		{gltf.JOINTS_0, false, &geometry.joints},
		{gltf.WEIGHTS_0, false, &geometry.weights},
	}
	for _, t := range targets {
		id, ok := ext.Attributes[t.name]
		if !ok {
			if t.required {
				return nil, core.NewImportError(core.ErrMissingData, op, errors.Errorf("draco extension has no %s attribute", t.name))
			}
			continue
		}
		values, components, err := decoded.Attribute(id)
		if err != nil {
			return nil, core.NewImportError(core.ErrGeometryMismatch, op, errors.Wrapf(err, "decoding %s", t.name))
		}
		if components <= 0 || len(values) != declared*components {
			return nil, core.NewImportError(core.ErrGeometryMismatch, op,
				errors.Errorf("%s has %d values for %d points of %d components", t.name, len(values), declared, components))
		}
		*t.target = values
	}
	if prim.Indices != nil {
		indices, err := decoded.Indices()
		if err != nil {
			return nil, core.NewImportError(core.ErrGeometryMismatch, op, errors.Wrap(err, "decoding indices"))
		}
		geometry.indices = indices
	}
	return geometry, nil
}
