package testbed

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/spaghettifunk/bolt/engine/assets/loaders"
	"github.com/spaghettifunk/bolt/engine/scene"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.SortKeys = true
}

type nodeSummary struct {
	Name     string
	Kind     string
	Position [3]float32
	Vertices uint32
	Program  string
	Children []nodeSummary
}

type modelSummary struct {
	Name     string
	Meshes   int
	Skins    int
	Textures int
	Clips    []string
	Root     nodeSummary
}

func summarizeNode(n *scene.Node) nodeSummary {
	p := n.Transform.Position
	s := nodeSummary{
		Name:     n.Name,
		Kind:     n.Kind.String(),
		Position: [3]float32{p.X, p.Y, p.Z},
	}
	if n.Mesh != nil {
		s.Vertices = n.Mesh.VertexCount()
	}
	if n.Program != nil {
		s.Program = n.Program.Name
	}
	for _, child := range n.Children() {
		s.Children = append(s.Children, summarizeNode(child))
	}
	return s
}

func summarizeModel(m *loaders.Model) modelSummary {
	s := modelSummary{
		Name:     m.Name,
		Meshes:   len(m.Meshes),
		Skins:    len(m.Skins),
		Textures: len(m.Textures),
		Root:     summarizeNode(m.Root),
	}
	for _, clip := range m.Clips {
		s.Clips = append(s.Clips, clip.Name)
	}
	return s
}

// SDump renders the hierarchy of m without device handles or matrices.
func SDump(m *loaders.Model) string {
	return spewConfig.Sdump(summarizeModel(m))
}
