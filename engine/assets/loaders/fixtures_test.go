package loaders

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/require"
)

// twoNodeGLB is a root node with one child holding a single triangle.
func twoNodeGLB(t *testing.T) []byte {
	t.Helper()
	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "triangle",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: map[string]uint32{gltf.POSITION: positions},
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "root", Children: []uint32{1}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
		{Name: "child", Mesh: gltf.Index(0), Translation: [3]float32{0, 0, -2}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
	}
	doc.Scenes[0].Nodes = []uint32{0}

	var buf bytes.Buffer
	encoder := gltf.NewEncoder(&buf)
	encoder.AsBinary = true
	require.NoError(t, encoder.Encode(doc))
	return buf.Bytes()
}

// bufferBuilder packs little endian values into one 4-byte aligned buffer
// and records a buffer view plus accessor for each of them.
type bufferBuilder struct {
	// uri overrides the embedded data uri of the buffer.
	uri         string
	buf         bytes.Buffer
	bufferViews []map[string]interface{}
	accessors   []map[string]interface{}
}

func (b *bufferBuilder) accessor(data interface{}, componentType ComponentType, accessorType string, count int) int {
	for b.buf.Len()%4 != 0 {
		b.buf.WriteByte(0)
	}
	offset := b.buf.Len()
	_ = binary.Write(&b.buf, binary.LittleEndian, data)
	b.bufferViews = append(b.bufferViews, map[string]interface{}{
		"buffer":     0,
		"byteOffset": offset,
		"byteLength": b.buf.Len() - offset,
	})
	b.accessors = append(b.accessors, map[string]interface{}{
		"bufferView":    len(b.bufferViews) - 1,
		"componentType": componentType,
		"type":          accessorType,
		"count":         count,
	})
	return len(b.accessors) - 1
}

// view records raw bytes as a buffer view only.
func (b *bufferBuilder) view(data []byte) int {
	for b.buf.Len()%4 != 0 {
		b.buf.WriteByte(0)
	}
	offset := b.buf.Len()
	b.buf.Write(data)
	b.bufferViews = append(b.bufferViews, map[string]interface{}{
		"buffer":     0,
		"byteOffset": offset,
		"byteLength": len(data),
	})
	return len(b.bufferViews) - 1
}

func (b *bufferBuilder) dataURI() string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b.buf.Bytes())
}

// document completes doc with the buffer, views and accessors and encodes it.
func (b *bufferBuilder) document(t *testing.T, doc map[string]interface{}) []byte {
	t.Helper()
	doc["asset"] = map[string]interface{}{"version": "2.0"}
	uri := b.uri
	if uri == "" {
		uri = b.dataURI()
	}
	doc["buffers"] = []interface{}{map[string]interface{}{"uri": uri, "byteLength": b.buf.Len()}}
	doc["bufferViews"] = b.bufferViews
	doc["accessors"] = b.accessors
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

var trianglePositions = [9]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeCompressedMesh struct {
	points     int
	attributes map[int][]float32
	calls      []int
}

func (m *fakeCompressedMesh) PointCount() int {
	return m.points
}

func (m *fakeCompressedMesh) Attribute(id int) ([]float32, int, error) {
	m.calls = append(m.calls, id)
	values := m.attributes[id]
	if m.points == 0 {
		return values, 0, nil
	}
	return values, len(values) / m.points, nil
}

func (m *fakeCompressedMesh) Indices() ([]uint32, error) {
	return []uint32{0, 1, 2}, nil
}

type fakeDecoder struct {
	mesh    *fakeCompressedMesh
	payload []byte
}

func (d *fakeDecoder) Decode(data []byte) (CompressedMesh, error) {
	d.payload = append([]byte(nil), data...)
	return d.mesh, nil
}
