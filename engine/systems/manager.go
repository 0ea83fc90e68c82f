package systems

import (
	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/renderer"
	"github.com/spaghettifunk/bolt/engine/renderer/components"
)

type SystemManagerConfig struct {
	AppName   string
	AppWidth  uint32
	AppHeight uint32
	/** @brief Job workers. Values below 1 use a single worker. */
	Workers int
	/** @brief Capacity of the pending job queue. */
	JobQueueSize int
	/** @brief Named cameras besides the default one. 0 allows 16. */
	MaxCameraCount uint16
}

type SystemManager struct {
	CameraSystem   *CameraSystem
	JobSystem      *JobSystem
	RendererSystem *RendererSystem
}

// NewSystemManager wires the systems together. camera becomes the default camera the renderer draws with.
func NewSystemManager(config SystemManagerConfig, backend renderer.RendererBackend, camera *components.Camera) (*SystemManager, error) {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.MaxCameraCount == 0 {
		config.MaxCameraCount = 16
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: config.MaxCameraCount}, camera)
	if err != nil {
		return nil, err
	}
	js, err := NewJobSystem(config.Workers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}
	rs, err := NewRendererSystem(config.AppName, config.AppWidth, config.AppHeight, backend, cs.GetDefault())
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		CameraSystem:   cs,
		JobSystem:      js,
		RendererSystem: rs,
	}, nil
}

func (sm *SystemManager) Initialize() error {
	return sm.RendererSystem.Initialize()
}

// Update delivers finished job callbacks on the calling thread.
func (sm *SystemManager) Update() {
	sm.JobSystem.Update()
}

func (sm *SystemManager) OnResize(width, height uint32) error {
	return sm.RendererSystem.OnResize(width, height)
}

// Shutdown stops the workers first so no job touches the backend after it is gone.
func (sm *SystemManager) Shutdown() error {
	if err := sm.JobSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.RendererSystem.Shutdown(); err != nil {
		core.LogError("renderer shutdown failed: %s", err)
		return err
	}
	return sm.CameraSystem.Shutdown()
}
