package systems

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/renderer/components"
	"github.com/spaghettifunk/bolt/engine/renderer/headless"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
	"github.com/spaghettifunk/bolt/engine/scene"
)

type rendererFixture struct {
	backend  *headless.Backend
	renderer *RendererSystem
	mesh     *scene.Mesh
	root     *scene.Node
}

func newRendererFixture(t *testing.T) *rendererFixture {
	t.Helper()
	backend := headless.New()
	camera := components.NewCamera(math.DegToRad(45), 1, 0.1, 100)
	r, err := NewRendererSystem("test", 640, 480, backend, camera)
	require.NoError(t, err)
	require.NoError(t, r.Initialize())

	mesh, err := scene.NewMesh(backend, scene.MeshBuffers{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 2},
	}, scene.DefaultMeshOptions())
	require.NoError(t, err)

	return &rendererFixture{backend: backend, renderer: r, mesh: mesh, root: scene.NewNode("root")}
}

// add attaches a drawable at depth z with its own program, so draws can be
// told apart by shader.
func (f *rendererFixture) add(t *testing.T, name string, z float32, transparent bool) *scene.Node {
	t.Helper()
	program, err := scene.NewProgram(f.backend, name, "void main(){}", "void main(){}")
	require.NoError(t, err)
	program.Transparent = transparent
	node := scene.NewDrawable(name, f.mesh, program)
	node.Transform.SetPosition(math.NewVec3(0, 0, z))
	require.NoError(t, f.root.AddChild(node))
	return node
}

func (f *rendererFixture) drawOrder() []string {
	names := map[uint32]string{}
	f.root.Traverse(func(n *scene.Node) {
		if n.Program != nil {
			names[n.Program.Shader().ID] = n.Name
		}
	})
	order := []string{}
	for _, draw := range f.backend.Draws() {
		order = append(order, names[draw.Shader])
	}
	return order
}

func TestRendererSortsFarthestFirst(t *testing.T) {
	f := newRendererFixture(t)
	f.add(t, "near", -1, false)
	f.add(t, "far", -5, false)
	f.add(t, "middle", -2, false)

	f.renderer.Draw(f.root)
	assert.Equal(t, []string{"far", "middle", "near"}, f.drawOrder())
}

func TestRendererDrawsOpaqueBeforeTransparent(t *testing.T) {
	f := newRendererFixture(t)
	glass := f.add(t, "glass", -10, true)
	f.add(t, "wall", -1, false)
	f.add(t, "window", -3, true)

	f.renderer.Draw(f.root)
	assert.Equal(t, []string{"wall", "glass", "window"}, f.drawOrder())

	draws := f.backend.Draws()
	require.Len(t, draws, 3)
	assert.False(t, draws[0].Enabled)
	assert.True(t, draws[1].Enabled)
	assert.Equal(t, glass.Program.Blend, draws[1].Blend)
	assert.Equal(t, metadata.BlendFunction{Src: metadata.BlendOne, Dst: metadata.BlendOneMinusSrcAlpha}, draws[1].Blend)

	stats := f.renderer.Stats()
	assert.Equal(t, 1, stats.Opaque)
	assert.Equal(t, 2, stats.Transparent)
	assert.Equal(t, 3, stats.DrawCalls)
}

func TestRendererKeepsInsertionOrderWithoutAutoSort(t *testing.T) {
	f := newRendererFixture(t)
	f.renderer.AutoSort = false
	f.add(t, "near", -1, false)
	f.add(t, "far", -5, false)

	f.renderer.Draw(f.root)
	assert.Equal(t, []string{"near", "far"}, f.drawOrder())
}

func TestRendererSortIsStable(t *testing.T) {
	f := newRendererFixture(t)
	for i := 0; i < 5; i++ {
		f.add(t, fmt.Sprintf("node_%d", i), -2, false)
	}

	f.renderer.Draw(f.root)
	assert.Equal(t, []string{"node_0", "node_1", "node_2", "node_3", "node_4"}, f.drawOrder())
}

func TestRendererSkipsWhatCannotBeDrawn(t *testing.T) {
	f := newRendererFixture(t)
	f.add(t, "visible", -1, false)
	hidden := f.add(t, "hidden", -2, false)
	hidden.Visible = false

	empty, err := scene.NewMesh(f.backend, scene.MeshBuffers{}, scene.DefaultMeshOptions())
	require.NoError(t, err)
	require.NoError(t, f.root.AddChild(scene.NewDrawable("empty", empty, hidden.Program)))
	require.NoError(t, f.root.AddChild(scene.NewDrawable("no_program", f.mesh, nil)))

	f.renderer.Draw(f.root)
	assert.Equal(t, []string{"visible"}, f.drawOrder())
	assert.Equal(t, 3, f.renderer.Stats().Skipped)
}

func TestRendererIgnoresInvisibleRoot(t *testing.T) {
	f := newRendererFixture(t)
	f.add(t, "child", -1, false)
	f.root.Visible = false

	f.renderer.Draw(f.root)
	f.renderer.Draw(nil)
	assert.Empty(t, f.backend.Draws())
}

func TestRendererSetsMatrixUniforms(t *testing.T) {
	f := newRendererFixture(t)
	f.root.Transform.SetPosition(math.NewVec3(1, 0, 0))
	node := f.add(t, "moved", -2, false)

	f.renderer.Draw(f.root)
	shader := node.Program.Shader().ID
	camera := f.renderer.Camera()

	model, ok := f.backend.Uniform(shader, "model")
	require.True(t, ok)
	want := math.NewMat4Translation(math.NewVec3(1, 0, -2))
	assert.InDeltaSlice(t, want.Data[:], model.Values, 1e-6)

	projection, ok := f.backend.Uniform(shader, "projection")
	require.True(t, ok)
	wantProjection := camera.Projection()
	assert.InDeltaSlice(t, wantProjection.Data[:], projection.Values, 1e-6)

	view, ok := f.backend.Uniform(shader, "view")
	require.True(t, ok)
	wantView := camera.View()
	assert.InDeltaSlice(t, wantView.Data[:], view.Values, 1e-6)

	normal, ok := f.backend.Uniform(shader, "normal")
	require.True(t, ok)
	wantNormal := node.NormalMatrix(camera.View())
	assert.InDeltaSlice(t, wantNormal.Data[:], normal.Values, 1e-5)
}

func TestRendererCullState(t *testing.T) {
	f := newRendererFixture(t)
	node := f.add(t, "double_sided", -1, false)
	node.Program.CullFace = metadata.CullFaceNone

	f.renderer.Draw(f.root)
	_, _, culling, _ := f.backend.State()
	assert.False(t, culling)

	node.Program.CullFace = metadata.CullFaceFront
	f.renderer.Draw(f.root)
	_, _, culling, face := f.backend.State()
	assert.True(t, culling)
	assert.Equal(t, metadata.CullFaceFront, face)
}

func TestRendererFrame(t *testing.T) {
	f := newRendererFixture(t)
	f.renderer.SetClearColour(math.NewVec4(1, 0, 0, 1))

	require.NoError(t, f.renderer.BeginFrame(0.016))
	require.NoError(t, f.renderer.EndFrame(0.016))

	commands := f.backend.Commands()
	ops := []headless.Op{}
	for _, c := range commands {
		ops = append(ops, c.Op)
	}
	assert.Contains(t, ops, headless.OpViewport)
	assert.Contains(t, ops, headless.OpClear)
	for _, c := range commands {
		if c.Op == headless.OpClear {
			assert.Equal(t, math.NewVec4(1, 0, 0, 1), c.Colour)
		}
	}
	assert.Equal(t, uint64(1), f.backend.Frame())
}

func TestRendererResize(t *testing.T) {
	f := newRendererFixture(t)
	require.NoError(t, f.renderer.OnResize(800, 400))
	assert.Equal(t, float32(2), f.renderer.Camera().Aspect)
	width, height := f.backend.Size()
	assert.Equal(t, uint32(800), width)
	assert.Equal(t, uint32(400), height)

	assert.Error(t, f.renderer.OnResize(0, 0))
}

func TestSortByDepth(t *testing.T) {
	f := newRendererFixture(t)
	nodes := []*scene.Node{}
	for _, z := range []float32{-1, -5, -2} {
		node := scene.NewNode(fmt.Sprintf("%g", z))
		node.Transform.SetPosition(math.NewVec3(0, 0, z))
		nodes = append(nodes, node)
	}

	f.renderer.SortByDepth(nodes)
	names := []string{}
	for _, node := range nodes {
		names = append(names, node.Name)
	}
	assert.Equal(t, []string{"-5", "-2", "-1"}, names)
}
