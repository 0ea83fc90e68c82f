package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/bolt/engine/math"
)

func TestCameraMatrices(t *testing.T) {
	c := NewCamera(math.DegToRad(45), 1.5, 0.1, 100)
	c.SetPosition(math.NewVec3(0, 2, 6))
	c.LookAt(math.NewVec3(0, 1, 0))
	assert.True(t, c.IsDirty)

	c.Update()
	assert.False(t, c.IsDirty)

	wantView := mgl32.LookAtV(mgl32.Vec3{0, 2, 6}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0})
	wantProjection := mgl32.Perspective(mgl32.DegToRad(45), 1.5, 0.1, 100)
	wantPV := wantProjection.Mul4(wantView)

	view, projection, pv := c.View(), c.Projection(), c.ProjectionView()
	assert.InDeltaSlice(t, wantView[:], view.Data[:], 1e-5)
	assert.InDeltaSlice(t, wantProjection[:], projection.Data[:], 1e-5)
	assert.InDeltaSlice(t, wantPV[:], pv.Data[:], 1e-4)
}

func TestCameraOrbitKeepsDistance(t *testing.T) {
	c := NewCamera(math.DegToRad(60), 1, 0.1, 100)
	c.SetPosition(math.NewVec3(0, 0, 5))

	c.Orbit(math.K_HALF_PI, 0)
	assert.InDelta(t, 5, c.Position.Length(), 1e-4)
	assert.InDelta(t, 5, c.Position.X, 1e-4)

	c.Orbit(0, math.K_PI)
	assert.Less(t, c.Position.Y, float32(5))
	assert.InDelta(t, 5, c.Position.Length(), 1e-4)
}
