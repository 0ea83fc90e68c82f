package components

import (
	"github.com/spaghettifunk/bolt/engine/math"
)

/**
 * @brief A perspective camera looking at a target point. View and
 * projection are rebuilt lazily by Update when something changed.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/** @brief The point the camera looks at. */
	Target math.Vec3
	Up     math.Vec3

	/** @brief Vertical field of view in radians. */
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	/** @brief Internal flag used to determine when the matrices need to be rebuilt. */
	IsDirty bool

	view           math.Mat4
	projection     math.Mat4
	projectionView math.Mat4
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera(fovRadians, aspect, near, far float32) *Camera {
	camera := &Camera{
		FOV:    fovRadians,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.Position = math.NewVec3(0, 0, 5)
	c.Target = math.NewVec3Zero()
	c.Up = math.NewVec3Up()
	c.IsDirty = true
	c.Update()
}

func (c *Camera) GetPosition() math.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) LookAt(target math.Vec3) {
	c.Target = target
	c.IsDirty = true
}

func (c *Camera) SetAspect(aspect float32) {
	c.Aspect = aspect
	c.IsDirty = true
}

// Update rebuilds view, projection and projection × view if the camera changed.
func (c *Camera) Update() {
	if !c.IsDirty {
		return
	}
	c.view = math.NewMat4LookAt(c.Position, c.Target, c.Up)
	c.projection = math.NewMat4Perspective(c.FOV, c.Aspect, c.Near, c.Far)
	c.projectionView = c.projection.Mul(c.view)
	c.IsDirty = false
}

func (c *Camera) View() math.Mat4 {
	c.Update()
	return c.view
}

func (c *Camera) Projection() math.Mat4 {
	c.Update()
	return c.projection
}

func (c *Camera) ProjectionView() math.Mat4 {
	c.Update()
	return c.projectionView
}

func (c *Camera) Forward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

func (c *Camera) MoveForward(amount float32) {
	direction := c.Forward().MulScalar(amount)
	c.Position = c.Position.Add(direction)
	c.Target = c.Target.Add(direction)
	c.IsDirty = true
}

// Orbit rotates the camera around its target by yaw (around up) and pitch.
func (c *Camera) Orbit(yaw, pitch float32) {
	offset := c.Position.Sub(c.Target)
	radius := offset.Length()
	if radius == 0 {
		return
	}

	currentPitch := float32(0)
	if v := offset.Y / radius; v != 0 {
		currentPitch = asin(math.Clamp(v, -1, 1))
	}
	currentYaw := atan2(offset.X, offset.Z)

	// Clamp to avoid Gimbal lock.
	limit := math.DegToRad(89)
	newPitch := math.Clamp(currentPitch+pitch, -limit, limit)
	newYaw := currentYaw + yaw

	c.Position = c.Target.Add(math.NewVec3(
		radius*cos(newPitch)*sin(newYaw),
		radius*sin(newPitch),
		radius*cos(newPitch)*cos(newYaw),
	))
	c.IsDirty = true
}
