package scene

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
)

/**
 * @brief A skeleton: joint nodes, their inverse bind matrices and the joint
 * matrices computed every frame. All three have the same length, fixed on
 * creation.
 */
type Skin struct {
	Name string

	joints              []*Node
	inverseBindMatrices []math.Mat4
	jointMatrices       []math.Mat4

	position math.Vec3
	scale    math.Vec3
	root     math.Mat4
}

func NewSkin(name string, joints []*Node, inverseBindMatrices []math.Mat4) (*Skin, error) {
	if len(joints) != len(inverseBindMatrices) {
		return nil, errors.Wrapf(core.ErrSkinMismatch, "skin '%s' has %d joints and %d inverse bind matrices", name, len(joints), len(inverseBindMatrices))
	}
	s := &Skin{
		Name:                name,
		joints:              joints,
		inverseBindMatrices: make([]math.Mat4, len(inverseBindMatrices)),
		jointMatrices:       make([]math.Mat4, len(joints)),
		position:            math.NewVec3Zero(),
		scale:               math.NewVec3One(),
		root:                math.NewMat4Identity(),
	}
	copy(s.inverseBindMatrices, inverseBindMatrices)
	for i := range s.jointMatrices {
		s.jointMatrices[i] = math.NewMat4Identity()
	}
	return s, nil
}

// SetPosition offsets the whole skeleton.
func (s *Skin) SetPosition(position math.Vec3) {
	s.position = position
	s.rebuildRoot()
}

// SetScale scales the whole skeleton.
func (s *Skin) SetScale(scale math.Vec3) {
	s.scale = scale
	s.rebuildRoot()
}

func (s *Skin) rebuildRoot() {
	s.root = math.NewMat4Translation(s.position).Mul(math.NewMat4Scale(s.scale))
}

/**
 * @brief Computes the joint matrices for the node owning the skinned mesh.
 * Per joint: inverse(owner) x joint, then x inverse bind, then root x.
 * The order matters.
 */
func (s *Skin) Update(owner *Node) {
	globalWorldInverse := owner.Model.Inverse()
	for i, joint := range s.joints {
		jointMatrix := globalWorldInverse.Mul(joint.Model)
		jointMatrix = jointMatrix.Mul(s.inverseBindMatrices[i])
		s.jointMatrices[i] = s.root.Mul(jointMatrix)
	}
}

func (s *Skin) JointMatrices() []math.Mat4 {
	return s.jointMatrices
}

func (s *Skin) InverseBindMatrices() []math.Mat4 {
	return s.inverseBindMatrices
}

func (s *Skin) Joints() []*Node {
	return s.joints
}

func (s *Skin) JointCount() int {
	return len(s.joints)
}

func (s *Skin) Position() math.Vec3 {
	return s.position
}

func (s *Skin) Scale() math.Vec3 {
	return s.scale
}
