package scene

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/renderer"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

// Fixed attribute slots shared by every shader of the engine.
const (
	AttributeSlotPosition uint32 = 0
	AttributeSlotNormal   uint32 = 1
	AttributeSlotUV       uint32 = 2
	// A mat4 per instance occupies four consecutive slots.
	AttributeSlotInstance uint32 = 3
	AttributeSlotJoints   uint32 = 7
	AttributeSlotWeights  uint32 = 8
)

const maxShortIndex = 0xFFFF

/** @brief CPU-side geometry a mesh is created from. Positions are required. */
type MeshBuffers struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

type MeshOptions struct {
	Instanced bool
	/** @brief Number of instances drawn. Defaults to len(Instances). */
	InstanceCount uint32
	DrawType      metadata.DrawMode
	/** @brief Per instance model matrices. Missing entries are identity. */
	Instances []math.Mat4
}

func DefaultMeshOptions() MeshOptions {
	return MeshOptions{DrawType: metadata.DrawModeTriangles}
}

type meshAttribute struct {
	slot   uint32
	size   int32
	buffer *metadata.Buffer
}

/**
 * @brief Geometry living on the device: vertex buffers, an optional index
 * buffer and the vertex array binding them. Delete is terminal.
 */
type Mesh struct {
	Name     string
	DrawType metadata.DrawMode

	backend renderer.RendererBackend

	positions []float32
	normals   []float32
	uvs       []float32
	indices   []uint32

	vertexCount   uint32
	indexCount    uint32
	instanced     bool
	instanceCount uint32
	indexType     metadata.DataType

	vao         *metadata.VertexArray
	attributes  map[string]*meshAttribute
	indexBuffer *metadata.Buffer

	bounds  math.Extents3D
	skinned bool
	skin    *Skin
	deleted bool
}

/**
 * @brief Uploads buffers to the device and links them to the fixed slots.
 * Indices are validated against the vertex count; non instanced meshes use
 * 16-bit indices and fail with ErrIndexOverflow on larger values.
 */
func NewMesh(backend renderer.RendererBackend, buffers MeshBuffers, options MeshOptions) (*Mesh, error) {
	if len(buffers.Positions)%3 != 0 {
		return nil, errors.Wrapf(core.ErrInvalidGeometry, "%d position floats is not a multiple of 3", len(buffers.Positions))
	}
	vertexCount := uint32(len(buffers.Positions) / 3)
	if buffers.Normals != nil && len(buffers.Normals) != len(buffers.Positions) {
		return nil, errors.Wrapf(core.ErrInvalidGeometry, "expected %d normal floats, got %d", len(buffers.Positions), len(buffers.Normals))
	}
	if buffers.UVs != nil && uint32(len(buffers.UVs)) != vertexCount*2 {
		return nil, errors.Wrapf(core.ErrInvalidGeometry, "expected %d uv floats, got %d", vertexCount*2, len(buffers.UVs))
	}
	for i, index := range buffers.Indices {
		if index >= vertexCount {
			return nil, errors.Wrapf(core.ErrInvalidGeometry, "index %d at %d exceeds vertex count %d", index, i, vertexCount)
		}
		if !options.Instanced && index > maxShortIndex {
			return nil, errors.Wrapf(core.ErrIndexOverflow, "index %d at %d", index, i)
		}
	}

	m := &Mesh{
		DrawType:    options.DrawType,
		backend:     backend,
		positions:   buffers.Positions,
		normals:     buffers.Normals,
		uvs:         buffers.UVs,
		indices:     buffers.Indices,
		vertexCount: vertexCount,
		indexCount:  uint32(len(buffers.Indices)),
		instanced:   options.Instanced,
		attributes:  make(map[string]*meshAttribute),
	}
	if m.normals == nil && m.DrawType == metadata.DrawModeTriangles && vertexCount > 0 {
		m.normals = math.GeometryGenerateNormals(m.positions, m.indices)
	}
	m.CalculateBoxBounds()

	if vertexCount == 0 {
		core.LogDebug("mesh created without vertices, it will not be drawn")
		return m, nil
	}
	if err := m.upload(options); err != nil {
		m.Delete()
		return nil, err
	}
	return m, nil
}

/** @brief A mesh carrying joint weights. It draws only once a skin is assigned. */
func NewSkinMesh(backend renderer.RendererBackend, buffers MeshBuffers, options MeshOptions) (*Mesh, error) {
	m, err := NewMesh(backend, buffers, options)
	if err != nil {
		return nil, err
	}
	m.skinned = true
	return m, nil
}

func (m *Mesh) upload(options MeshOptions) error {
	vao, err := m.backend.VertexArrayCreate()
	if err != nil {
		return errors.Wrap(err, "failed to create vertex array")
	}
	m.vao = vao

	if err := m.SetAttribute("position", AttributeSlotPosition, 3, m.positions); err != nil {
		return err
	}
	if m.normals != nil {
		if err := m.SetAttribute("normal", AttributeSlotNormal, 3, m.normals); err != nil {
			return err
		}
	}
	if m.uvs != nil {
		if err := m.SetAttribute("uv", AttributeSlotUV, 2, m.uvs); err != nil {
			return err
		}
	}

	if m.instanced {
		if err := m.uploadInstances(options); err != nil {
			return err
		}
	}

	if m.indexCount > 0 {
		var data interface{}
		if m.instanced {
			m.indexType = metadata.DataTypeUnsignedInt
			data = m.indices
		} else {
			m.indexType = metadata.DataTypeUnsignedShort
			short := make([]uint16, len(m.indices))
			for i, index := range m.indices {
				short[i] = uint16(index)
			}
			data = short
		}
		buffer, err := m.backend.BufferCreate(metadata.BufferTargetElementArray, data)
		if err != nil {
			return errors.Wrap(err, "failed to create index buffer")
		}
		m.indexBuffer = buffer
		m.backend.IndexBufferBind(m.vao, buffer)
	}
	return nil
}

func (m *Mesh) uploadInstances(options MeshOptions) error {
	count := options.InstanceCount
	if count == 0 {
		count = uint32(len(options.Instances))
	}
	if count == 0 {
		count = 1
	}
	m.instanceCount = count

	data := make([]float32, 0, count*16)
	for i := uint32(0); i < count; i++ {
		matrix := math.NewMat4Identity()
		if int(i) < len(options.Instances) {
			matrix = options.Instances[i]
		}
		data = append(data, matrix.Data[:]...)
	}
	buffer, err := m.backend.BufferCreate(metadata.BufferTargetArray, data)
	if err != nil {
		return errors.Wrap(err, "failed to create instance buffer")
	}
	m.attributes["instance"] = &meshAttribute{slot: AttributeSlotInstance, size: 16, buffer: buffer}
	for column := uint32(0); column < 4; column++ {
		m.backend.VertexAttributeLink(m.vao, buffer, metadata.VertexAttribute{
			Location: AttributeSlotInstance + column,
			Size:     4,
			DataType: metadata.DataTypeFloat,
			Stride:   16 * 4,
			Offset:   int(column) * 4 * 4,
			Divisor:  1,
		})
	}
	return nil
}

/**
 * @brief Uploads a per vertex float attribute and links it to slot. Setting
 * an existing name replaces its buffer.
 */
func (m *Mesh) SetAttribute(name string, slot uint32, size int32, data []float32) error {
	if m.deleted {
		return errors.Wrapf(core.ErrResourceDeleted, "mesh '%s'", m.Name)
	}
	if m.vao == nil {
		return errors.Wrapf(core.ErrInvalidGeometry, "mesh '%s' has no vertices", m.Name)
	}
	if size <= 0 || uint32(len(data)) != m.vertexCount*uint32(size) {
		return errors.Wrapf(core.ErrInvalidGeometry, "attribute '%s' expects %d floats, got %d", name, m.vertexCount*uint32(size), len(data))
	}
	buffer, err := m.backend.BufferCreate(metadata.BufferTargetArray, data)
	if err != nil {
		return errors.Wrapf(err, "failed to create buffer for attribute '%s'", name)
	}
	if previous, ok := m.attributes[name]; ok {
		m.backend.BufferDestroy(previous.buffer)
	}
	m.attributes[name] = &meshAttribute{slot: slot, size: size, buffer: buffer}
	m.backend.VertexAttributeLink(m.vao, buffer, metadata.VertexAttribute{
		Location: slot,
		Size:     size,
		DataType: metadata.DataTypeFloat,
	})
	return nil
}

/**
 * @brief Issues the draw for this mesh with program. Skinned meshes update
 * their skin against node first and push the joint matrices. Returns false
 * when nothing was drawn.
 */
func (m *Mesh) Draw(program *Program, node *Node) bool {
	if !m.Bound() || program == nil {
		return false
	}
	if m.skinned {
		if m.skin == nil || node == nil {
			return false
		}
		m.skin.Update(node)
		program.SetMatrix4Array("jointTransforms", m.skin.JointMatrices())
		program.SetInt("jointCount", int32(m.skin.JointCount()))
	}
	if !program.Activate() {
		return false
	}

	m.backend.VertexArrayBind(m.vao)
	switch {
	case m.indexBuffer != nil && m.instanced:
		m.backend.DrawElementsInstanced(m.DrawType, m.indexCount, m.indexType, 0, m.instanceCount)
	case m.indexBuffer != nil:
		m.backend.DrawElements(m.DrawType, m.indexCount, m.indexType, 0)
	case m.instanced:
		m.backend.DrawArraysInstanced(m.DrawType, 0, m.vertexCount, m.instanceCount)
	default:
		m.backend.DrawArrays(m.DrawType, 0, m.vertexCount)
	}
	m.backend.VertexArrayUnbind()
	return true
}

/** @brief Recomputes the axis aligned bounds. Empty geometry yields a zero box. */
func (m *Mesh) CalculateBoxBounds() math.Extents3D {
	m.bounds = math.GeometryCalculateExtents(m.positions)
	return m.bounds
}

func (m *Mesh) Bounds() math.Extents3D {
	return m.bounds
}

// Faces returns the triangles of a triangle list, indexed or not.
func (m *Mesh) Faces() [][3]uint32 {
	if m.DrawType != metadata.DrawModeTriangles {
		return nil
	}
	faces := [][3]uint32{}
	if m.indices != nil {
		for i := 0; i+2 < len(m.indices); i += 3 {
			faces = append(faces, [3]uint32{m.indices[i], m.indices[i+1], m.indices[i+2]})
		}
		return faces
	}
	for i := uint32(0); i+2 < m.vertexCount; i += 3 {
		faces = append(faces, [3]uint32{i, i + 1, i + 2})
	}
	return faces
}

/** @brief Releases every device resource and CPU buffer. The mesh is unusable afterwards. */
func (m *Mesh) Delete() {
	if m.deleted {
		return
	}
	for _, attribute := range m.attributes {
		m.backend.BufferDestroy(attribute.buffer)
	}
	m.attributes = nil
	if m.indexBuffer != nil {
		m.backend.BufferDestroy(m.indexBuffer)
		m.indexBuffer = nil
	}
	if m.vao != nil {
		m.backend.VertexArrayDestroy(m.vao)
		m.vao = nil
	}
	m.positions, m.normals, m.uvs, m.indices = nil, nil, nil, nil
	m.skin = nil
	m.deleted = true
}

// Bound reports whether the mesh has a live device binding with vertices.
func (m *Mesh) Bound() bool {
	return m != nil && !m.deleted && m.vao != nil && m.vertexCount > 0
}

func (m *Mesh) Deleted() bool {
	return m.deleted
}

func (m *Mesh) VertexCount() uint32 {
	return m.vertexCount
}

func (m *Mesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *Mesh) IndexType() metadata.DataType {
	return m.indexType
}

func (m *Mesh) Instanced() bool {
	return m.instanced
}

func (m *Mesh) InstanceCount() uint32 {
	return m.instanceCount
}

func (m *Mesh) Positions() []float32 {
	return m.positions
}

func (m *Mesh) Normals() []float32 {
	return m.normals
}

func (m *Mesh) UVs() []float32 {
	return m.uvs
}

func (m *Mesh) Indices() []uint32 {
	return m.indices
}

func (m *Mesh) VertexArray() *metadata.VertexArray {
	return m.vao
}

func (m *Mesh) Skinned() bool {
	return m.skinned
}

func (m *Mesh) Skin() *Skin {
	return m.skin
}

func (m *Mesh) SetSkin(skin *Skin) {
	m.skin = skin
}
