package math

// GeometryCalculateExtents computes the axis aligned box of packed xyz positions.
// Empty input yields a zero box.
func GeometryCalculateExtents(positions []float32) Extents3D {
	if len(positions) < 3 {
		return Extents3D{}
	}
	first := NewVec3FromSlice(positions, 0)
	extents := Extents3D{Min: first, Max: first}
	for i := 3; i+2 < len(positions); i += 3 {
		x, y, z := positions[i], positions[i+1], positions[i+2]
		extents.Min = Vec3{Min(extents.Min.X, x), Min(extents.Min.Y, y), Min(extents.Min.Z, z)}
		extents.Max = Vec3{Max(extents.Max.X, x), Max(extents.Max.Y, y), Max(extents.Max.Z, z)}
	}
	return extents
}

// Center returns the midpoint of the box.
func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

// Size returns the edge lengths of the box.
func (e Extents3D) Size() Vec3 {
	return e.Max.Sub(e.Min)
}

// GeometryGenerateNormals accumulates face normals per vertex and normalizes them.
// Without indices the positions are treated as a triangle list.
func GeometryGenerateNormals(positions []float32, indices []uint32) []float32 {
	vertexCount := len(positions) / 3
	normals := make([]float32, vertexCount*3)

	triangle := func(i0, i1, i2 uint32) {
		if int(i0) >= vertexCount || int(i1) >= vertexCount || int(i2) >= vertexCount {
			return
		}
		p0 := NewVec3FromSlice(positions, int(i0)*3)
		p1 := NewVec3FromSlice(positions, int(i1)*3)
		p2 := NewVec3FromSlice(positions, int(i2)*3)

		// NOTE: area weighted, the cross product is not normalized on purpose
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, idx := range [3]uint32{i0, i1, i2} {
			normals[idx*3+0] += n.X
			normals[idx*3+1] += n.Y
			normals[idx*3+2] += n.Z
		}
	}

	if len(indices) > 0 {
		for i := 0; i+2 < len(indices); i += 3 {
			triangle(indices[i], indices[i+1], indices[i+2])
		}
	} else {
		for i := 0; i+2 < vertexCount; i += 3 {
			triangle(uint32(i), uint32(i+1), uint32(i+2))
		}
	}

	for i := 0; i < vertexCount; i++ {
		n := NewVec3FromSlice(normals, i*3).Normalize()
		normals[i*3+0], normals[i*3+1], normals[i*3+2] = n.X, n.Y, n.Z
	}
	return normals
}
