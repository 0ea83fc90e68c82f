package loaders

/**
 * @brief A mesh decoded from a KHR_draco_mesh_compression payload.
 * Attribute ids are the ones listed by the primitive extension.
 */
type CompressedMesh interface {
	PointCount() int
	// Attribute returns the flattened values and the components per point.
	Attribute(id int) ([]float32, int, error)
	Indices() ([]uint32, error)
}

/** @brief Decodes compressed mesh payloads. The engine ships no implementation. */
type MeshDecoder interface {
	Decode(data []byte) (CompressedMesh, error)
}
