package scene

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
)

/** @brief Distinguishes plain hierarchy nodes from nodes that draw something. */
type Kind int

const (
	/** @brief A node that only carries a transform and children. */
	KindGroup Kind = iota
	/** @brief A node owning a mesh and a program. */
	KindDrawable
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindDrawable:
		return "drawable"
	}
	return "unknown"
}

/**
 * @brief A node of the scene graph. Every node is owned by its parent; the
 * parent pointer is a lookup only. Mutating the hierarchy while it is being
 * traversed is not supported.
 */
type Node struct {
	/** @brief Unique identifier generated on creation. */
	ID string
	/** @brief Free-form name, used as lookup key by imported hierarchies. */
	Name string
	Kind Kind
	/** @brief Local position, rotation and scale. */
	Transform *math.Transform
	/** @brief The model (world) matrix computed by UpdateModelMatrix. */
	Model math.Mat4
	/** @brief Nodes that are not visible are skipped when drawing. */
	Visible bool
	/** @brief When false, UpdateModelMatrix leaves this subtree untouched. */
	AutoUpdate bool

	/** @brief Set only for KindDrawable. */
	Mesh    *Mesh
	Program *Program

	parent   *Node
	children []*Node
}

func NewNode(name string) *Node {
	return &Node{
		ID:         core.NewIdentifier(),
		Name:       name,
		Kind:       KindGroup,
		Transform:  math.TransformCreate(),
		Model:      math.NewMat4Identity(),
		Visible:    true,
		AutoUpdate: true,
	}
}

func NewDrawable(name string, mesh *Mesh, program *Program) *Node {
	n := NewNode(name)
	n.Kind = KindDrawable
	n.Mesh = mesh
	n.Program = program
	return n
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Children() []*Node {
	return n.children
}

/**
 * @brief Moves the node under parent, detaching it from its current parent
 * first. A nil parent detaches the node. Reparenting a node under itself or
 * under one of its descendants fails with ErrCyclicHierarchy.
 */
func (n *Node) SetParent(parent *Node) error {
	if parent != nil && n.isAncestorOf(parent) {
		return errors.Wrapf(core.ErrCyclicHierarchy, "cannot parent '%s' to '%s'", n.Name, parent.Name)
	}
	if n.parent != nil {
		n.parent.detach(n)
	}
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return nil
}

func (n *Node) AddChild(child *Node) error {
	return child.SetParent(n)
}

// RemoveChild reports whether child was a direct child of n.
func (n *Node) RemoveChild(child *Node) bool {
	if child == nil || child.parent != n {
		return false
	}
	n.detach(child)
	child.parent = nil
	return true
}

func (n *Node) detach(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// isAncestorOf includes n itself.
func (n *Node) isAncestorOf(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

/** @brief Pre-order depth-first walk, visiting n first. */
func (n *Node) Traverse(visit func(node *Node)) {
	visit(n)
	for _, child := range n.children {
		child.Traverse(visit)
	}
}

/**
 * @brief Recomputes the model matrix of the subtree top-down. parent is the
 * model matrix of the parent node, nil for a root.
 */
func (n *Node) UpdateModelMatrix(parent *math.Mat4) {
	if !n.AutoUpdate {
		return
	}
	local := n.Transform.GetLocal()
	if parent != nil {
		n.Model = parent.Mul(local)
	} else {
		n.Model = local
	}
	for _, child := range n.children {
		child.UpdateModelMatrix(&n.Model)
	}
}

/**
 * @brief The world matrix derived from the immediate parent only:
 * parent.Model x local. Deeper chains rely on UpdateModelMatrix.
 */
func (n *Node) WorldMatrix() math.Mat4 {
	local := n.Transform.GetLocal()
	if n.parent == nil {
		return local
	}
	return n.parent.Model.Mul(local)
}

func (n *Node) WorldPosition() math.Vec3 {
	return n.WorldMatrix().GetTranslation()
}

// Find returns the first node named name in pre-order, or nil.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

/** @brief Inverse-transpose of the model-view matrix, used to transform normals. */
func (n *Node) NormalMatrix(view math.Mat4) math.Mat4 {
	return view.Mul(n.Model).Inverse().Transposed()
}

// Drawables collects every drawable node of the subtree in traversal order.
func (n *Node) Drawables() []*Node {
	drawables := []*Node{}
	n.Traverse(func(node *Node) {
		if node.Kind == KindDrawable {
			drawables = append(drawables, node)
		}
	})
	return drawables
}
