package loaders

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/bolt/engine/animation"
	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/renderer"
	"github.com/spaghettifunk/bolt/engine/scene"
)

/**
 * @brief Everything created by one import. The caller owns it and releases
 * the device resources with Delete.
 */
type Model struct {
	Name string
	/** @brief Synthetic root, named after the imported scene. */
	Root *scene.Node
	/** @brief One node per glTF node, by index. */
	Nodes    []*scene.Node
	Meshes   []*scene.Mesh
	Skins    []*scene.Skin
	Programs []*scene.Program
	Textures []*scene.Texture
	Clips    []*animation.Clip
}

// Delete releases every device resource of the model. It is safe to call twice.
func (m *Model) Delete() {
	for _, mesh := range m.Meshes {
		mesh.Delete()
	}
	for _, program := range m.Programs {
		program.Delete()
	}
	for _, texture := range m.Textures {
		texture.Delete()
	}
}

type GLTFLoaderOption func(*GLTFLoader)

func WithFetcher(fetcher Fetcher) GLTFLoaderOption {
	return func(l *GLTFLoader) {
		l.fetcher = fetcher
	}
}

// WithMeshDecoder enables KHR_draco_mesh_compression primitives.
func WithMeshDecoder(decoder MeshDecoder) GLTFLoaderOption {
	return func(l *GLTFLoader) {
		l.decoder = decoder
	}
}

/**
 * @brief Imports glTF and GLB scenes. The loader keeps no state between
 * imports, so loads are independent; device resources must still be created
 * on the thread owning the backend.
 */
type GLTFLoader struct {
	backend renderer.RendererBackend
	fetcher Fetcher
	decoder MeshDecoder
}

func NewGLTFLoader(backend renderer.RendererBackend, opts ...GLTFLoaderOption) *GLTFLoader {
	l := &GLTFLoader{
		backend: backend,
		fetcher: NewDefaultFetcher(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GLTFLoader) Fetcher() Fetcher {
	return l.fetcher
}

/** @brief Fetches location and imports it. Blocks until done; ctx covers the fetches. */
func (l *GLTFLoader) Load(ctx context.Context, location string) (*Model, error) {
	data, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	return l.Decode(ctx, data, location)
}

/**
 * @brief Imports a GLB container or a JSON glTF document. External buffers
 * and images are resolved against baseURL. Any error aborts the whole import
 * and releases what was created so far.
 */
func (l *GLTFLoader) Decode(ctx context.Context, data []byte, baseURL string) (*Model, error) {
	imp := &importer{
		ctx:          ctx,
		backend:      l.backend,
		fetcher:      l.fetcher,
		decoder:      l.decoder,
		baseURL:      baseURL,
		meshes:       make(map[meshKey][]*primitiveResult),
		programs:     make(map[programKey]*scene.Program),
		textures:     make(map[uint32]*scene.Texture),
		skinPairings: make(map[meshKey]*scene.Skin),
		model:        &Model{Name: modelName(baseURL)},
	}

	jsonData := data
	if IsContainer(data) {
		container, err := DecodeContainer(data)
		if err != nil {
			return nil, err
		}
		jsonData = container.JSON
		imp.glbBuffer = container.BIN
	}
	if err := json.Unmarshal(jsonData, &imp.doc); err != nil {
		return nil, core.NewImportError(core.ErrContainerFormat, "parse json", err)
	}

	if err := imp.run(); err != nil {
		imp.model.Delete()
		return nil, err
	}
	return imp.model, nil
}

func modelName(location string) string {
	if location == "" || strings.HasPrefix(location, "data:") {
		return "model"
	}
	base := path.Base(strings.ReplaceAll(location, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

type meshKey struct {
	mesh int
	skin int
}

type programKey struct {
	material int
	skinned  bool
}

type primitiveResult struct {
	mesh    *scene.Mesh
	program *scene.Program
}

// importer holds the state of a single import.
type importer struct {
	ctx     context.Context
	backend renderer.RendererBackend
	fetcher Fetcher
	decoder MeshDecoder
	baseURL string

	doc       gltf.Document
	glbBuffer []byte
	buffers   [][]byte

	meshes       map[meshKey][]*primitiveResult
	programs     map[programKey]*scene.Program
	textures     map[uint32]*scene.Texture
	skinPairings map[meshKey]*scene.Skin

	model *Model
}

func (imp *importer) run() error {
	if v := imp.doc.Asset.Version; v != "" && !strings.HasPrefix(v, "2.") {
		return core.NewImportError(core.ErrContainerFormat, "asset", errors.Errorf("unsupported glTF version %s", v))
	}
	imp.checkExtensions()

	if err := imp.loadBuffers(); err != nil {
		return err
	}
	if err := imp.buildNodes(); err != nil {
		return err
	}
	if err := imp.buildHierarchy(); err != nil {
		return err
	}
	if err := imp.buildMeshes(); err != nil {
		return err
	}
	if err := imp.buildSkins(); err != nil {
		return err
	}
	if err := imp.buildAnimations(); err != nil {
		return err
	}
	imp.model.Root.UpdateModelMatrix(nil)
	return nil
}

func (imp *importer) checkExtensions() {
	for _, ext := range imp.doc.ExtensionsRequired {
		switch ext {
		case extensionDraco:
			if imp.decoder == nil {
				core.LogWarn("%s: %s is required but no mesh decoder is configured", core.ErrUnsupportedFeature, ext)
			}
		default:
			core.LogWarn("%s: required extension %s is ignored", core.ErrUnsupportedFeature, ext)
		}
	}
}

func (imp *importer) loadBuffers() error {
	imp.buffers = make([][]byte, len(imp.doc.Buffers))
	for i, b := range imp.doc.Buffers {
		if b == nil {
			return core.NewImportError(core.ErrMissingData, fmt.Sprintf("buffer %d", i), errors.New("null buffer"))
		}
		if b.URI == "" {
			if i != 0 || imp.glbBuffer == nil {
				return core.NewImportError(core.ErrMissingData, fmt.Sprintf("buffer %d", i), errors.New("no uri and no binary chunk"))
			}
			imp.buffers[i] = imp.glbBuffer
			continue
		}
		data, err := imp.fetcher.Fetch(imp.ctx, ResolveURI(imp.baseURL, b.URI))
		if err != nil {
			return err
		}
		imp.buffers[i] = data
	}
	for i, b := range imp.buffers {
		if len(b) < int(imp.doc.Buffers[i].ByteLength) {
			return core.NewImportError(core.ErrMissingData, fmt.Sprintf("buffer %d", i),
				errors.Errorf("declares %d bytes, got %d", imp.doc.Buffers[i].ByteLength, len(b)))
		}
	}
	return nil
}

func (imp *importer) bufferView(index uint32) ([]byte, *gltf.BufferView, error) {
	if int(index) >= len(imp.doc.BufferViews) || imp.doc.BufferViews[index] == nil {
		return nil, nil, errors.Wrapf(core.ErrMissingData, "buffer view %d does not exist", index)
	}
	view := imp.doc.BufferViews[index]
	if int(view.Buffer) >= len(imp.buffers) {
		return nil, nil, errors.Wrapf(core.ErrMissingData, "buffer view %d references missing buffer %d", index, view.Buffer)
	}
	buffer := imp.buffers[view.Buffer]
	start, end := int(view.ByteOffset), int(view.ByteOffset)+int(view.ByteLength)
	if end > len(buffer) {
		return nil, nil, errors.Wrapf(core.ErrMissingData, "buffer view %d exceeds buffer %d", index, view.Buffer)
	}
	return buffer[start:end], view, nil
}

// Largest zero-filled accessor built for a missing buffer view.
const maxZeroFillBytes = 1 << 26

/**
 * @brief Resolves an accessor to its values. The read starts at
 * accessor.byteOffset + bufferView.byteOffset in the raw buffer.
 */
func (imp *importer) readAccessor(index uint32) (TypedArray, *gltf.Accessor, error) {
	if int(index) >= len(imp.doc.Accessors) || imp.doc.Accessors[index] == nil {
		return nil, nil, core.NewImportError(core.ErrMissingData, "accessor", errors.Errorf("accessor %d does not exist", index))
	}
	accessor := imp.doc.Accessors[index]
	if accessor.Sparse != nil {
		core.LogWarn("%s: sparse accessor %d read without its sparse values", core.ErrUnsupportedFeature, index)
	}
	ctype := componentType(accessor.ComponentType)
	count := int(accessor.Count)
	if accessor.BufferView == nil {
		// no view means all zeros
		size := uint64(accessor.Count) * uint64(accessor.Type.Components()) * uint64(ctype.Size())
		if size > maxZeroFillBytes {
			return nil, nil, core.NewImportError(core.ErrMissingData, fmt.Sprintf("accessor %d", index),
				errors.Errorf("%d zero-filled elements exceed %d bytes", accessor.Count, maxZeroFillBytes))
		}
		array, err := ReadAccessor(make([]byte, size), 0, 0, ctype, accessor.Type.String(), count)
		if err != nil {
			return nil, nil, core.NewImportError(core.ErrMissingData, fmt.Sprintf("accessor %d", index), err)
		}
		return array, accessor, nil
	}
	_, view, err := imp.bufferView(*accessor.BufferView)
	if err != nil {
		return nil, nil, core.NewImportError(core.ErrMissingData, fmt.Sprintf("accessor %d", index), err)
	}
	buffer := imp.buffers[view.Buffer]
	offset := int(accessor.ByteOffset) + int(view.ByteOffset)
	array, err := ReadAccessor(buffer, offset, int(view.ByteStride), ctype, accessor.Type.String(), count)
	if err != nil {
		return nil, nil, core.NewImportError(core.ErrMissingData, fmt.Sprintf("accessor %d", index), err)
	}
	return array, accessor, nil
}

func (imp *importer) buildNodes() error {
	imp.model.Nodes = make([]*scene.Node, len(imp.doc.Nodes))
	for i, n := range imp.doc.Nodes {
		if n == nil {
			return core.NewImportError(core.ErrMissingData, fmt.Sprintf("node %d", i), errors.New("null node"))
		}
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		node := scene.NewNode(name)

		var position, scale math.Vec3
		var rotation math.Quaternion
		if matrix := n.MatrixOrDefault(); matrix != gltf.DefaultMatrix {
			position, rotation, scale = math.NewMat4FromSlice(matrix[:], 0).Decompose()
		} else {
			t, r, sc := n.TranslationOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault()
			position = math.NewVec3(t[0], t[1], t[2])
			rotation = math.NewQuat(r[0], r[1], r[2], r[3])
			scale = math.NewVec3(sc[0], sc[1], sc[2])
		}
		node.Transform.SetPositionRotationScale(position, rotation, scale)
		imp.model.Nodes[i] = node
	}
	return nil
}

func (imp *importer) node(index uint32) (*scene.Node, error) {
	if int(index) >= len(imp.model.Nodes) {
		return nil, errors.Wrapf(core.ErrMissingData, "node %d does not exist", index)
	}
	return imp.model.Nodes[index], nil
}

func (imp *importer) buildHierarchy() error {
	for i, n := range imp.doc.Nodes {
		parent := imp.model.Nodes[i]
		for _, c := range n.Children {
			child, err := imp.node(c)
			if err != nil {
				return core.NewImportError(core.ErrMissingData, "hierarchy", err)
			}
			if child.Parent() != nil {
				return core.NewImportError(core.ErrMissingData, "hierarchy", errors.Errorf("node %d has more than one parent", c))
			}
			if err := parent.AddChild(child); err != nil {
				return core.NewImportError(core.ErrMissingData, "hierarchy", err)
			}
		}
	}

	var sceneIndex uint32
	if imp.doc.Scene != nil {
		sceneIndex = *imp.doc.Scene
	}
	rootName := imp.model.Name
	var roots []uint32
	switch {
	case int(sceneIndex) < len(imp.doc.Scenes) && imp.doc.Scenes[sceneIndex] != nil:
		s := imp.doc.Scenes[sceneIndex]
		if s.Name != "" {
			rootName = s.Name
		}
		roots = s.Nodes
	case len(imp.doc.Scenes) > 0:
		return core.NewImportError(core.ErrMissingData, "scene", errors.Errorf("scene %d does not exist", sceneIndex))
	default:
		// no scenes, every parentless node is a root
		for i, node := range imp.model.Nodes {
			if node.Parent() == nil {
				roots = append(roots, uint32(i))
			}
		}
	}

	imp.model.Root = scene.NewNode(rootName)
	for _, r := range roots {
		node, err := imp.node(r)
		if err != nil {
			return core.NewImportError(core.ErrMissingData, "scene", err)
		}
		if node.Parent() != nil {
			return core.NewImportError(core.ErrMissingData, "scene", errors.Errorf("scene root %d is a child of another node", r))
		}
		if err := imp.model.Root.AddChild(node); err != nil {
			return core.NewImportError(core.ErrMissingData, "scene", err)
		}
	}
	return nil
}
