package systems

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/renderer"
	"github.com/spaghettifunk/bolt/engine/renderer/components"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
	"github.com/spaghettifunk/bolt/engine/scene"
)

/** @brief Counters for the last drawn frame. */
type FrameStats struct {
	/** @brief Opaque nodes collected by the traversal. */
	Opaque int
	/** @brief Transparent nodes collected by the traversal. */
	Transparent int
	/** @brief Draw calls actually issued. */
	DrawCalls int
	/** @brief Drawables skipped: invisible, unbound or missing a program. */
	Skipped int
}

// depthEntry pairs a drawable with its NDC depth for sorting.
type depthEntry struct {
	node  *scene.Node
	depth float32
}

/**
 * @brief Traverses a scene graph every frame and submits its drawables to
 * the backend: opaque first, then transparent, each list depth sorted.
 */
type RendererSystem struct {
	backend renderer.RendererBackend
	camera  *components.Camera

	// application
	AppName   string
	AppWidth  uint32
	AppHeight uint32

	/** @brief Sort both draw lists by depth every frame. Defaults to true. */
	AutoSort bool
	/** @brief Enables depth testing at the start of every frame. */
	DepthTest   bool
	ClearColour math.Vec4

	opaque      []depthEntry
	transparent []depthEntry
	stats       FrameStats
}

func NewRendererSystem(appName string, appWidth, appHeight uint32, backend renderer.RendererBackend, camera *components.Camera) (*RendererSystem, error) {
	if backend == nil {
		return nil, errors.New("renderer system requires a backend")
	}
	if camera == nil {
		return nil, errors.New("renderer system requires a camera")
	}
	return &RendererSystem{
		backend:     backend,
		camera:      camera,
		AppName:     appName,
		AppWidth:    appWidth,
		AppHeight:   appHeight,
		AutoSort:    true,
		DepthTest:   true,
		ClearColour: math.NewVec4(0, 0, 0.2, 1),
	}, nil
}

func (r *RendererSystem) Initialize() error {
	if err := r.backend.Initialize(r.AppName, r.AppWidth, r.AppHeight); err != nil {
		core.LogError("failed to initialize renderer backend: %s", err)
		return err
	}
	r.camera.SetAspect(aspect(r.AppWidth, r.AppHeight))
	core.LogInfo("renderer initialized (%dx%d)", r.AppWidth, r.AppHeight)
	return nil
}

func (r *RendererSystem) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *RendererSystem) Backend() renderer.RendererBackend {
	return r.backend
}

func (r *RendererSystem) Camera() *components.Camera {
	return r.camera
}

func (r *RendererSystem) SetCamera(camera *components.Camera) {
	if camera == nil {
		return
	}
	camera.SetAspect(aspect(r.AppWidth, r.AppHeight))
	r.camera = camera
}

func (r *RendererSystem) SetClearColour(colour math.Vec4) {
	r.ClearColour = colour
}

// OnResize updates the viewport size and the camera aspect ratio.
func (r *RendererSystem) OnResize(width, height uint32) error {
	r.AppWidth = width
	r.AppHeight = height
	r.camera.SetAspect(aspect(width, height))
	return r.backend.Resized(width, height)
}

// BeginFrame clears the target and resets the viewport and frame counters.
func (r *RendererSystem) BeginFrame(deltaTime float64) error {
	if err := r.backend.BeginFrame(deltaTime); err != nil {
		return err
	}
	r.stats = FrameStats{}
	r.backend.SetViewport(0, 0, r.AppWidth, r.AppHeight)
	r.backend.SetDepthTest(r.DepthTest)
	r.backend.Clear(r.ClearColour)
	return nil
}

func (r *RendererSystem) EndFrame(deltaTime float64) error {
	if err := r.backend.EndFrame(deltaTime); err != nil {
		core.LogError("backend func EndFrame failed: %s", err)
		return err
	}
	return nil
}

func (r *RendererSystem) Stats() FrameStats {
	return r.stats
}

/**
 * @brief Draws the graph under root. Model matrices are propagated once,
 * drawables are split by Program.Transparent and, with AutoSort, ordered
 * farthest first by the NDC depth of their world position.
 */
func (r *RendererSystem) Draw(root *scene.Node) {
	r.camera.Update()
	r.opaque = r.opaque[:0]
	r.transparent = r.transparent[:0]
	if root == nil || !root.Visible {
		return
	}

	root.UpdateModelMatrix(nil)
	root.Traverse(func(node *scene.Node) {
		if node.Kind != scene.KindDrawable {
			return
		}
		entry := depthEntry{node: node}
		if node.Program != nil && node.Program.Transparent {
			r.transparent = append(r.transparent, entry)
		} else {
			r.opaque = append(r.opaque, entry)
		}
	})
	r.stats.Opaque += len(r.opaque)
	r.stats.Transparent += len(r.transparent)

	if r.AutoSort {
		r.sortByDepth(r.opaque)
		r.sortByDepth(r.transparent)
	}

	r.backend.SetBlending(false)
	for _, entry := range r.opaque {
		r.render(entry.node)
	}
	if len(r.transparent) > 0 {
		r.backend.SetBlending(true)
		for _, entry := range r.transparent {
			r.render(entry.node)
		}
		r.backend.SetBlending(false)
	}
}

// SortByDepth orders drawables farthest first as seen by the current camera.
func (r *RendererSystem) SortByDepth(nodes []*scene.Node) {
	entries := make([]depthEntry, len(nodes))
	for i, node := range nodes {
		entries[i] = depthEntry{node: node}
	}
	r.sortByDepth(entries)
	for i, entry := range entries {
		nodes[i] = entry.node
	}
}

func (r *RendererSystem) sortByDepth(entries []depthEntry) {
	projectionView := r.camera.ProjectionView()
	for i := range entries {
		entries[i].depth = entries[i].node.WorldPosition().TransformProject(projectionView).Z
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].depth > entries[j].depth
	})
}

func (r *RendererSystem) render(node *scene.Node) {
	mesh, program := node.Mesh, node.Program
	if !node.Visible || mesh == nil || program == nil || !mesh.Bound() {
		r.stats.Skipped++
		return
	}

	view := r.camera.View()
	program.SetMatrix4("projection", r.camera.Projection())
	program.SetMatrix4("view", view)
	program.SetMatrix4("model", node.Model)
	program.SetMatrix4("normal", node.NormalMatrix(view))

	if program.Transparent {
		r.backend.SetBlendFunction(program.Blend)
	}
	if program.CullFace == metadata.CullFaceNone {
		r.backend.SetCulling(false)
	} else {
		r.backend.SetCulling(true)
		r.backend.SetCullFace(program.CullFace)
	}

	if mesh.Draw(program, node) {
		r.stats.DrawCalls++
	} else {
		r.stats.Skipped++
	}
}

func aspect(width, height uint32) float32 {
	if height == 0 {
		return 1
	}
	return float32(width) / float32(height)
}
