package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-5

func toMgl(m Mat4) mgl32.Mat4 {
	return mgl32.Mat4(m.Data)
}

func TestMat4MulMatchesColumnMajorConvention(t *testing.T) {
	a := NewMat4Translation(NewVec3(1, 2, 3))
	b := NewMat4Scale(NewVec3(2, 3, 4))

	got := a.Mul(b)
	want := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 3, 4))

	assert.InDeltaSlice(t, want[:], got.Data[:], tolerance)

	// scale is applied first, then translation
	p := NewVec3(1, 1, 1).Transform(got)
	assert.True(t, p.Compare(NewVec3(3, 5, 7), tolerance), "got %v", p)
}

func TestMat4Invert(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3(0, 1, 0), 0.7, true)
	m := NewMat4FromTRS(NewVec3(4, -2, 1), q, NewVec3(2, 2, 2))

	inv, ok := m.Invert()
	require.True(t, ok)

	want := toMgl(m).Inv()
	assert.InDeltaSlice(t, want[:], inv.Data[:], 1e-4)

	identity := m.Mul(inv)
	assert.True(t, identity.Compare(NewMat4Identity(), 1e-4))
}

func TestMat4InvertSingular(t *testing.T) {
	_, ok := Mat4{}.Invert()
	assert.False(t, ok)
	assert.Equal(t, NewMat4Identity(), Mat4{}.Inverse())
}

func TestMat4FromTRSMatchesComposition(t *testing.T) {
	axis := mgl32.Vec3{1, 1, 0}.Normalize()
	mq := mgl32.QuatRotate(1.1, axis)
	q := NewQuat(mq.V[0], mq.V[1], mq.V[2], mq.W)

	got := NewMat4FromTRS(NewVec3(1, 2, 3), q, NewVec3(1, 2, 3))
	want := mgl32.Translate3D(1, 2, 3).Mul4(mq.Mat4()).Mul4(mgl32.Scale3D(1, 2, 3))
	assert.InDeltaSlice(t, want[:], got.Data[:], tolerance)

	wantRotation := mq.Mat4()
	rotation := q.ToMat4()
	assert.InDeltaSlice(t, wantRotation[:], rotation.Data[:], tolerance)
}

func TestMat4Decompose(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3(0, 0, 1), 2.5, true)
	m := NewMat4FromTRS(NewVec3(-3, 0.5, 8), q, NewVec3(1, 4, 2))

	translation, rotation, scale := m.Decompose()
	assert.True(t, translation.Compare(NewVec3(-3, 0.5, 8), tolerance))
	assert.True(t, scale.Compare(NewVec3(1, 4, 2), 1e-4))

	// q and -q are the same rotation
	if rotation.Dot(q) < 0 {
		rotation = rotation.Scale(-1)
	}
	assert.True(t, Vec4(rotation).Compare(Vec4(q), 1e-4), "got %v want %v", rotation, q)
}

func TestMat4PerspectiveAndLookAt(t *testing.T) {
	p := NewMat4Perspective(DegToRad(45), 16.0/9.0, 0.1, 100)
	wantP := mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 100)
	assert.InDeltaSlice(t, wantP[:], p.Data[:], tolerance)

	eye, center, up := NewVec3(3, 4, 5), NewVec3(0, 1, 0), NewVec3Up()
	v := NewMat4LookAt(eye, center, up)
	wantV := mgl32.LookAtV(mgl32.Vec3{3, 4, 5}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0})
	assert.InDeltaSlice(t, wantV[:], v.Data[:], tolerance)
}

func TestTransformProjectDepthOrdering(t *testing.T) {
	view := NewMat4LookAt(NewVec3Zero(), NewVec3(0, 0, -1), NewVec3Up())
	pv := NewMat4Perspective(DegToRad(60), 1, 0.1, 100).Mul(view)

	near := NewVec3(0, 0, -1).TransformProject(pv)
	far := NewVec3(0, 0, -5).TransformProject(pv)
	assert.Greater(t, far.Z, near.Z)
}

func TestQuaternionSlerp(t *testing.T) {
	a := NewQuatIdentity()
	b := NewQuatFromAxisAngle(NewVec3(0, 1, 0), K_HALF_PI, true)

	got := a.Slerp(b, 0.5)
	want := mgl32.QuatSlerp(mgl32.QuatIdent(), mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}), 0.5)

	assert.InDelta(t, want.W, got.W, 1e-5)
	assert.InDelta(t, want.V[1], got.Y, 1e-5)
	assert.Equal(t, a, a.Slerp(b, 0).Normalize())
}
