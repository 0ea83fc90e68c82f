package math

/**
 * @brief Creates and returns an identity matrix:
 *
 * {
 *   {1, 0, 0, 0},
 *   {0, 1, 0, 0},
 *   {0, 0, 1, 0},
 *   {0, 0, 0, 1}
 * }
 *
 * @return A new identity matrix
 */
func NewMat4Identity() Mat4 {
	out := Mat4{}
	out.Data[0] = 1.0
	out.Data[5] = 1.0
	out.Data[10] = 1.0
	out.Data[15] = 1.0
	return out
}

// NewMat4FromSlice copies 16 column-major values starting at offset.
func NewMat4FromSlice(values []float32, offset int) Mat4 {
	out := Mat4{}
	copy(out.Data[:], values[offset:offset+16])
	return out
}

/**
 * @brief Returns mt × other, so other is applied first to a column vector.
 *
 * @param other The right hand side matrix.
 * @return The result of the matrix multiplication.
 */
func (mt Mat4) Mul(other Mat4) Mat4 {
	out := Mat4{}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[i*4+row] * other.Data[col*4+i]
			}
			out.Data[col*4+row] = sum
		}
	}
	return out
}

/**
 * @brief Creates and returns a perspective matrix. Typically used to render 3d scenes.
 *
 * @param fovRadians The vertical field of view in radians.
 * @param aspectRatio The aspect ratio.
 * @param nearClip The near clipping plane distance.
 * @param farClip The far clipping plane distance.
 * @return A new perspective matrix.
 */
func NewMat4Perspective(fovRadians, aspectRatio, nearClip, farClip float32) Mat4 {
	halfTanFov := ktan(fovRadians * 0.5)
	out := Mat4{}
	out.Data[0] = 1.0 / (aspectRatio * halfTanFov)
	out.Data[5] = 1.0 / halfTanFov
	out.Data[10] = -((farClip + nearClip) / (farClip - nearClip))
	out.Data[11] = -1.0
	out.Data[14] = -((2.0 * farClip * nearClip) / (farClip - nearClip))
	return out
}

/**
 * @brief Creates and returns a view matrix looking at target from position.
 */
func NewMat4LookAt(position, target, up Vec3) Mat4 {
	zAxis := position.Sub(target).Normalize()
	xAxis := up.Cross(zAxis).Normalize()
	yAxis := zAxis.Cross(xAxis)

	out := Mat4{}
	out.Data[0] = xAxis.X
	out.Data[1] = yAxis.X
	out.Data[2] = zAxis.X
	out.Data[4] = xAxis.Y
	out.Data[5] = yAxis.Y
	out.Data[6] = zAxis.Y
	out.Data[8] = xAxis.Z
	out.Data[9] = yAxis.Z
	out.Data[10] = zAxis.Z
	out.Data[12] = -xAxis.Dot(position)
	out.Data[13] = -yAxis.Dot(position)
	out.Data[14] = -zAxis.Dot(position)
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Returns a transposed copy of the provided matrix (rows->colums)
 */
func (mt Mat4) Transposed() Mat4 {
	out := Mat4{}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out.Data[row*4+col] = mt.Data[col*4+row]
		}
	}
	return out
}

/**
 * @brief Inverts the matrix. The second return value is false when the
 * matrix is singular, in which case the identity is returned.
 */
func (mt Mat4) Invert() (Mat4, bool) {
	a := &mt.Data
	a00, a01, a02, a03 := a[0], a[1], a[2], a[3]
	a10, a11, a12, a13 := a[4], a[5], a[6], a[7]
	a20, a21, a22, a23 := a[8], a[9], a[10], a[11]
	a30, a31, a32, a33 := a[12], a[13], a[14], a[15]

	b00 := a00*a11 - a01*a10
	b01 := a00*a12 - a02*a10
	b02 := a00*a13 - a03*a10
	b03 := a01*a12 - a02*a11
	b04 := a01*a13 - a03*a11
	b05 := a02*a13 - a03*a12
	b06 := a20*a31 - a21*a30
	b07 := a20*a32 - a22*a30
	b08 := a20*a33 - a23*a30
	b09 := a21*a32 - a22*a31
	b10 := a21*a33 - a23*a31
	b11 := a22*a33 - a23*a32

	det := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if det == 0 {
		return NewMat4Identity(), false
	}
	det = 1.0 / det

	out := Mat4{}
	o := &out.Data
	o[0] = (a11*b11 - a12*b10 + a13*b09) * det
	o[1] = (a02*b10 - a01*b11 - a03*b09) * det
	o[2] = (a31*b05 - a32*b04 + a33*b03) * det
	o[3] = (a22*b04 - a21*b05 - a23*b03) * det
	o[4] = (a12*b08 - a10*b11 - a13*b07) * det
	o[5] = (a00*b11 - a02*b08 + a03*b07) * det
	o[6] = (a32*b02 - a30*b05 - a33*b01) * det
	o[7] = (a20*b05 - a22*b02 + a23*b01) * det
	o[8] = (a10*b10 - a11*b08 + a13*b06) * det
	o[9] = (a01*b08 - a00*b10 - a03*b06) * det
	o[10] = (a30*b04 - a31*b02 + a33*b00) * det
	o[11] = (a21*b02 - a20*b04 - a23*b00) * det
	o[12] = (a11*b07 - a10*b09 - a12*b06) * det
	o[13] = (a00*b09 - a01*b07 + a02*b06) * det
	o[14] = (a31*b01 - a30*b03 - a32*b00) * det
	o[15] = (a20*b03 - a21*b01 + a22*b00) * det
	return out, true
}

// Inverse is Invert without the singular flag.
func (mt Mat4) Inverse() Mat4 {
	out, _ := mt.Invert()
	return out
}

/**
 * @brief Creates and returns a translation matrix from the given position.
 */
func NewMat4Translation(position Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[12] = position.X
	out.Data[13] = position.Y
	out.Data[14] = position.Z
	return out
}

/**
 * @brief Returns a scale matrix using the provided scale.
 */
func NewMat4Scale(scale Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[0] = scale.X
	out.Data[5] = scale.Y
	out.Data[10] = scale.Z
	return out
}

// NewMat4FromTRS builds translation × rotation × scale in one pass.
func NewMat4FromTRS(position Vec3, rotation Quaternion, scale Vec3) Mat4 {
	x, y, z, w := rotation.X, rotation.Y, rotation.Z, rotation.W
	x2, y2, z2 := x+x, y+y, z+z
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2
	wx, wy, wz := w*x2, w*y2, w*z2

	out := Mat4{}
	out.Data[0] = (1 - (yy + zz)) * scale.X
	out.Data[1] = (xy + wz) * scale.X
	out.Data[2] = (xz - wy) * scale.X
	out.Data[4] = (xy - wz) * scale.Y
	out.Data[5] = (1 - (xx + zz)) * scale.Y
	out.Data[6] = (yz + wx) * scale.Y
	out.Data[8] = (xz + wy) * scale.Z
	out.Data[9] = (yz - wx) * scale.Z
	out.Data[10] = (1 - (xx + yy)) * scale.Z
	out.Data[12] = position.X
	out.Data[13] = position.Y
	out.Data[14] = position.Z
	out.Data[15] = 1
	return out
}

func (mt Mat4) GetTranslation() Vec3 {
	return Vec3{mt.Data[12], mt.Data[13], mt.Data[14]}
}

// GetScaling returns the length of each basis column.
func (mt Mat4) GetScaling() Vec3 {
	return Vec3{
		Vec3{mt.Data[0], mt.Data[1], mt.Data[2]}.Length(),
		Vec3{mt.Data[4], mt.Data[5], mt.Data[6]}.Length(),
		Vec3{mt.Data[8], mt.Data[9], mt.Data[10]}.Length(),
	}
}

// Decompose splits an affine matrix into translation, rotation and scale.
func (mt Mat4) Decompose() (Vec3, Quaternion, Vec3) {
	translation := mt.GetTranslation()
	scale := mt.GetScaling()
	if scale.X == 0 || scale.Y == 0 || scale.Z == 0 {
		return translation, NewQuatIdentity(), scale
	}

	d := mt.Data
	is := Vec3{1 / scale.X, 1 / scale.Y, 1 / scale.Z}
	// r<row><col> of the unscaled rotation
	r00, r10, r20 := d[0]*is.X, d[1]*is.X, d[2]*is.X
	r01, r11, r21 := d[4]*is.Y, d[5]*is.Y, d[6]*is.Y
	r02, r12, r22 := d[8]*is.Z, d[9]*is.Z, d[10]*is.Z

	q := Quaternion{}
	trace := r00 + r11 + r22
	switch {
	case trace > 0:
		s := ksqrt(trace+1) * 2
		q.W = 0.25 * s
		q.X = (r21 - r12) / s
		q.Y = (r02 - r20) / s
		q.Z = (r10 - r01) / s
	case r00 > r11 && r00 > r22:
		s := ksqrt(1+r00-r11-r22) * 2
		q.W = (r21 - r12) / s
		q.X = 0.25 * s
		q.Y = (r01 + r10) / s
		q.Z = (r02 + r20) / s
	case r11 > r22:
		s := ksqrt(1+r11-r00-r22) * 2
		q.W = (r02 - r20) / s
		q.X = (r01 + r10) / s
		q.Y = 0.25 * s
		q.Z = (r12 + r21) / s
	default:
		s := ksqrt(1+r22-r00-r11) * 2
		q.W = (r10 - r01) / s
		q.X = (r02 + r20) / s
		q.Y = (r12 + r21) / s
		q.Z = 0.25 * s
	}
	return translation, q.Normalize(), scale
}

// Compare reports whether every element differs by at most tolerance.
func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := range mt.Data {
		if kabs(mt.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}
