package loaders

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/scene"
)

/**
 * @brief Runs once every node exists: one Skin per (mesh, skin) pairing,
 * assigned to the skinned meshes of that pairing.
 */
func (imp *importer) buildSkins() error {
	for _, n := range imp.doc.Nodes {
		if n.Mesh == nil || n.Skin == nil {
			continue
		}
		key := meshKey{mesh: int(*n.Mesh), skin: int(*n.Skin)}
		if _, done := imp.skinPairings[key]; done {
			continue
		}
		skin, err := imp.buildSkin(key.skin)
		if err != nil {
			return err
		}
		imp.skinPairings[key] = skin
		imp.model.Skins = append(imp.model.Skins, skin)
		for _, result := range imp.meshes[key] {
			if result != nil && result.mesh.Skinned() {
				result.mesh.SetSkin(skin)
			}
		}
	}
	return nil
}

func (imp *importer) buildSkin(index int) (*scene.Skin, error) {
	op := fmt.Sprintf("skin %d", index)
	if index < 0 || index >= len(imp.doc.Skins) || imp.doc.Skins[index] == nil {
		return nil, core.NewImportError(core.ErrMissingData, op, errors.New("skin does not exist"))
	}
	gs := imp.doc.Skins[index]

	joints := make([]*scene.Node, len(gs.Joints))
	for i, j := range gs.Joints {
		joint, err := imp.node(j)
		if err != nil {
			return nil, core.NewImportError(core.ErrMissingData, op, err)
		}
		joints[i] = joint
	}

	inverseBindMatrices := make([]math.Mat4, len(joints))
	if gs.InverseBindMatrices == nil {
		for i := range inverseBindMatrices {
			inverseBindMatrices[i] = math.NewMat4Identity()
		}
	} else {
		values, accessor, err := imp.readAccessor(*gs.InverseBindMatrices)
		if err != nil {
			return nil, err
		}
		if accessor.Type != gltf.AccessorMat4 || int(accessor.Count) < len(joints) {
			return nil, core.NewImportError(core.ErrMissingData, op,
				errors.Errorf("inverse bind accessor holds %d %s for %d joints", accessor.Count, accessor.Type, len(joints)))
		}
		data := values.Float32s()
		for i := range inverseBindMatrices {
			inverseBindMatrices[i] = math.NewMat4FromSlice(data, i*16)
		}
	}

	name := gs.Name
	if name == "" {
		name = fmt.Sprintf("skin_%d", index)
	}
	skin, err := scene.NewSkin(name, joints, inverseBindMatrices)
	if err != nil {
		return nil, core.NewImportError(core.ErrMissingData, op, err)
	}
	return skin, nil
}
