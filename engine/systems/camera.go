package systems

import (
	"fmt"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/renderer/components"
)

type CameraSystem struct {
	Config *CameraSystemConfig
	lookup map[string]*cameraLookup
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.Camera
}

type cameraLookup struct {
	camera         *components.Camera
	referenceCount uint16
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/**
	 * @brief The maximum number of named cameras that can be managed by
	 * the system. The default camera does not count.
	 */
	MaxCameraCount uint16
}

/**
 * @brief Creates the camera system around defaultCamera. A nil camera is
 * replaced by a 45 degree perspective camera.
 */
func NewCameraSystem(config *CameraSystemConfig, defaultCamera *components.Camera) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if defaultCamera == nil {
		defaultCamera = components.NewCamera(math.DegToRad(45), 1, 0.1, 1000)
	}
	return &CameraSystem{
		Config:        config,
		lookup:        make(map[string]*cameraLookup, config.MaxCameraCount),
		DefaultCamera: defaultCamera,
	}, nil
}

func (cs *CameraSystem) Shutdown() error {
	cs.lookup = make(map[string]*cameraLookup)
	return nil
}

/**
 * @brief Acquires a camera by name, creating it with the projection of the
 * default camera if it does not exist yet. Increments the reference count.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}
	entry, ok := cs.lookup[name]
	if !ok {
		if len(cs.lookup) >= int(cs.Config.MaxCameraCount) {
			err := fmt.Errorf("func CameraSystemAcquire failed to acquire new slot for '%s'. Adjust camera system config to allow more", name)
			core.LogError(err.Error())
			return nil, err
		}
		core.LogDebug("Creating new camera named '%s'...", name)
		d := cs.DefaultCamera
		entry = &cameraLookup{camera: components.NewCamera(d.FOV, d.Aspect, d.Near, d.Far)}
		cs.lookup[name] = entry
	}
	entry.referenceCount++
	return entry.camera, nil
}

/**
 * @brief Releases a camera with the given name. When the reference count
 * reaches 0 the camera is dropped and the name becomes free.
 */
func (cs *CameraSystem) Release(name string) {
	if name == components.DEFAULT_CAMERA_NAME {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return
	}
	entry, ok := cs.lookup[name]
	if !ok {
		core.LogWarn("CameraSystemRelease failed lookup of '%s'. Nothing was done.", name)
		return
	}
	entry.referenceCount--
	if entry.referenceCount < 1 {
		delete(cs.lookup, name)
	}
}

func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.DefaultCamera
}
