package assets

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/assets/loaders"
	"github.com/spaghettifunk/bolt/engine/containers"
	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

const maxPendingChanges = 64

var ErrAssetNotFound = errors.New("asset not found")

type AssetInfo struct {
	// Name is the path relative to the asset directory, with forward slashes.
	Name       string
	Path       string
	Type       metadata.ResourceType
	Size       int64
	LastLoaded time.Time
}

/**
 * @brief Indexes the files of an asset directory, loads them through the
 * registered loaders and, when watching, reports changed models on Update.
 */
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	wg       sync.WaitGroup
	fsnotify *fsnotify.Watcher
	watching bool
	isClosed bool

	changes        *containers.RingQueue[string]
	onModelChanged []func(name string)
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		changes:  containers.NewRingQueue[string](maxPendingChanges),
	}, nil
}

/**
 * @brief Indexes assetsDir and registers the built-in loaders. Models are
 * imported with importer. With watch set, the directory tree is watched for
 * changes until Shutdown.
 */
func (am *AssetManager) Initialize(assetsDir string, watch bool, importer *loaders.GLTFLoader) error {
	root, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	am.root = root

	// Register loaders
	am.RegisterLoader(metadata.ResourceTypeText, &loaders.ShaderLoader{})
	am.RegisterLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.RegisterLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})
	if importer != nil {
		am.RegisterLoader(metadata.ResourceTypeModel, &loaders.ModelLoader{Importer: importer})
	}

	if err := am.watchRecursive(root, watch); err != nil {
		return errors.Wrapf(err, "failed to index assets in '%s'", root)
	}
	if watch {
		am.watching = true
		am.wg.Add(1)
		go am.start()
	}
	core.LogInfo("indexed %d assets in '%s'", len(am.assets), root)
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	if am.watching {
		close(am.done)
		am.wg.Wait()
		return nil
	}
	return am.fsnotify.Close()
}

func (am *AssetManager) Root() string {
	return am.root
}

// Register loaders for each asset type
func (am *AssetManager) RegisterLoader(assetType metadata.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// OnModelChanged registers fn to be called from Update with the name of every model that changed on disk.
func (am *AssetManager) OnModelChanged(fn func(name string)) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.onModelChanged = append(am.onModelChanged, fn)
}

// Get returns the index entry of name.
func (am *AssetManager) Get(name string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	asset, ok := am.assets[filepath.ToSlash(name)]
	return asset, ok
}

// List returns the sorted names of the indexed assets of resourceType.
func (am *AssetManager) List(resourceType metadata.ResourceType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	names := []string{}
	for name, asset := range am.assets {
		if asset.Type == resourceType {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Load an asset using the appropriate loader
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	key := filepath.ToSlash(name)
	am.mutex.Lock()
	asset, exists := am.assets[key]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[key] = asset
	}
	loader, loaderExists := am.loaders[resourceType]
	am.mutex.Unlock()

	if !exists {
		return nil, errors.Wrapf(ErrAssetNotFound, "'%s'", name)
	}
	if asset.Type != resourceType {
		return nil, errors.Errorf("asset '%s' is %s, not %s", name, asset.Type, resourceType)
	}
	if !loaderExists {
		return nil, errors.Errorf("no loader registered for asset type: %s", resourceType)
	}
	return loader.Load(asset.Path, resourceType, params)
}

/** @brief Imports the model asset name. ctx bounds the fetch of its external resources. */
func (am *AssetManager) LoadModel(ctx context.Context, name string) (*loaders.Model, error) {
	resource, err := am.LoadAsset(name, metadata.ResourceTypeModel, ctx)
	if err != nil {
		return nil, err
	}
	model, ok := resource.Data.(*loaders.Model)
	if !ok {
		return nil, errors.Errorf("asset '%s' did not load as a model", name)
	}
	return model, nil
}

func (am *AssetManager) UnloadAsset(resource *metadata.Resource) error {
	am.mutex.RLock()
	loader, ok := am.loaders[resource.ResourceType]
	am.mutex.RUnlock()
	if !ok {
		return errors.Errorf("no loader registered for asset type: %s", resource.ResourceType)
	}
	return loader.Unload(resource)
}

/**
 * @brief Runs the OnModelChanged callbacks for the models changed since the
 * last call, once per model. Call it from the thread owning the renderer.
 */
func (am *AssetManager) Update() {
	seen := map[string]bool{}
	for {
		name, err := am.changes.Dequeue()
		if err != nil {
			break
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		am.mutex.RLock()
		callbacks := append([]func(string){}, am.onModelChanged...)
		am.mutex.RUnlock()
		for _, fn := range callbacks {
			fn(name)
		}
	}
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, true); err != nil {
						core.LogError("failed to watch '%s': %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if asset, ok := am.handleFileEvent(e.Name); ok && asset.Type == metadata.ResourceTypeModel {
					if err := am.changes.Enqueue(asset.Name); err != nil {
						core.LogWarn("dropping change of '%s': %s", asset.Name, err)
					}
				}
			}
			// Can't stat a deleted path, so it is removed from both the index and the watch list.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
				_ = am.fsnotify.Remove(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive indexes every file under path and, with watch set, adds
// each directory to the watch list.
func (am *AssetManager) watchRecursive(path string, watch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if watch {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) (AssetInfo, bool) {
	assetType, ok := determineAssetType(path)
	if !ok {
		return AssetInfo{}, false
	}
	name, err := am.name(path)
	if err != nil {
		return AssetInfo{}, false
	}
	info := AssetInfo{
		Name: name,
		Path: path,
		Type: assetType,
	}
	if fi, err := os.Stat(path); err == nil {
		info.Size = fi.Size()
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	if previous, ok := am.assets[name]; ok {
		info.LastLoaded = previous.LastLoaded
	}
	am.assets[name] = info
	return info, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	name, err := am.name(path)
	if err != nil {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, name)
}

func (am *AssetManager) name(path string) (string, error) {
	rel, err := filepath.Rel(am.root, path)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", errors.Errorf("'%s' is outside of '%s'", path, am.root)
	}
	return filepath.ToSlash(rel), nil
}

func determineAssetType(path string) (metadata.ResourceType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return metadata.ResourceTypeModel, true
	case ".png", ".jpg", ".jpeg", ".webp":
		return metadata.ResourceTypeImage, true
	case ".bin":
		return metadata.ResourceTypeBinary, true
	case ".vert", ".frag", ".glsl":
		return metadata.ResourceTypeText, true
	}
	return metadata.ResourceTypeCustom, false
}
