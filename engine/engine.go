package engine

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/bolt/engine/assets"
	"github.com/spaghettifunk/bolt/engine/assets/loaders"
	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/renderer"
	"github.com/spaghettifunk/bolt/engine/renderer/components"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
	"github.com/spaghettifunk/bolt/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     atomic.Bool
	isSuspended   bool
	backend       renderer.RendererBackend
	importer      *loaders.GLTFLoader
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	assetServer   *http.Server
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      float64

	// cancels in-flight fetches on shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// ModelLoaded receives the outcome of LoadModelAsync on the frame thread.
type ModelLoaded func(model *loaders.Model, err error)

func New(g *Game, backend renderer.RendererBackend, opts ...loaders.GLTFLoaderOption) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("engine needs a game with an application config")
	}
	config := g.ApplicationConfig
	core.SetLevel(config.LogLevel)

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	camera := components.NewCamera(math.DegToRad(config.Camera.FOV), 1, config.Camera.Near, config.Camera.Far)
	camera.SetPosition(math.NewVec3(config.Camera.Position[0], config.Camera.Position[1], config.Camera.Position[2]))
	camera.LookAt(math.NewVec3(config.Camera.Target[0], config.Camera.Target[1], config.Camera.Target[2]))

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		AppName:      config.Name,
		AppWidth:     config.StartWidth,
		AppHeight:    config.StartHeight,
		Workers:      config.Workers,
		JobQueueSize: 64,
	}, backend, camera)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	sm.RendererSystem.AutoSort = config.Renderer.AutoSort
	sm.RendererSystem.DepthTest = config.Renderer.DepthTest
	c := config.Renderer.ClearColour
	sm.RendererSystem.SetClearColour(math.NewVec4(c[0], c[1], c[2], c[3]))

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		backend:       backend,
		importer:      loaders.NewGLTFLoader(backend, opts...),
		assetManager:  am,
		systemManager: sm,
		width:         config.StartWidth,
		height:        config.StartHeight,
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
		ctx:           ctx,
		cancel:        cancel,
	}
	g.Engine = e
	g.SystemManager = sm
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig

	if err := e.systemManager.Initialize(); err != nil {
		return err
	}

	if config.AssetsDir != "" {
		if err := e.assetManager.Initialize(config.AssetsDir, config.WatchAssets, e.importer); err != nil {
			return err
		}
		if config.ServeAddress != "" {
			e.assetServer = assets.StartAssetServer(config.ServeAddress, e.assetManager)
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine must be initialized before running")
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	config := e.gameInstance.ApplicationConfig
	var targetFrameSeconds float64
	if config.TargetFPS > 0 {
		targetFrameSeconds = 1.0 / config.TargetFPS
	}

	for e.isRunning.Load() {
		if e.isSuspended {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		var currentTime float64 = e.clock.Elapsed()
		var delta float64 = (currentTime - e.lastTime)
		frameStart := time.Now()

		e.assetManager.Update()
		e.systemManager.Update()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err)
				e.isRunning.Store(false)
				return err
			}
		}

		if err := e.drawFrame(delta); err != nil {
			core.LogError("Game render failed, shutting down: %s", err)
			e.isRunning.Store(false)
			return err
		}

		// Figure out how long the frame took and give the rest back to the OS.
		frameElapsedTime := time.Since(frameStart).Seconds()
		e.metrics.Update(frameElapsedTime)
		if remaining := targetFrameSeconds - frameElapsedTime; remaining > 0 {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}
		if e.metrics.TotalFrames()%300 == 0 {
			core.LogDebug("fps: %.1f, frame: %.3fms", e.metrics.FPS(), e.metrics.FrameTime())
		}

		e.lastTime = currentTime
		if config.MaxFrames > 0 && e.metrics.TotalFrames() >= config.MaxFrames {
			e.isRunning.Store(false)
		}
	}
	return nil
}

func (e *Engine) drawFrame(delta float64) error {
	rs := e.systemManager.RendererSystem
	if err := rs.BeginFrame(delta); err != nil {
		return err
	}
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(rs, delta); err != nil {
			return err
		}
	}
	return rs.EndFrame(delta)
}

// Stop makes Run return after the current frame. Safe from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)
	e.cancel()

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}
	if e.assetServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.assetServer.Shutdown(ctx); err != nil {
			core.LogError("asset server shutdown failed: %s", err)
		}
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	return e.systemManager.Shutdown()
}

/**
 * @brief Applies a framebuffer resize. A zero size suspends the frame loop
 * until a non-zero size arrives.
 */
func (e *Engine) OnResize(width, height uint32) error {
	if width == e.width && height == e.height {
		return nil
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			return err
		}
	}
	return e.systemManager.OnResize(width, height)
}

/**
 * @brief Fetches location on a job worker and imports it on the frame
 * thread during a later Run iteration. location is an indexed asset name, a
 * file path or a URL. onLoaded always runs exactly once.
 */
func (e *Engine) LoadModelAsync(location string, onLoaded ModelLoaded) error {
	resolved := e.ResolveAsset(location)
	fetcher := e.importer.Fetcher()
	return e.systemManager.JobSystem.Submit(metadata.JobTask{
		JobType:     metadata.JOB_TYPE_RESOURCE_LOAD,
		InputParams: resolved,
		OnStart: func(params interface{}) (interface{}, error) {
			return fetcher.Fetch(e.ctx, params.(string))
		},
		OnComplete: func(result interface{}) {
			model, err := e.importer.Decode(e.ctx, result.([]byte), resolved)
			onLoaded(model, err)
		},
		OnFailure: func(err error) {
			onLoaded(nil, err)
		},
	})
}

// ResolveAsset maps an indexed asset name to its path, leaving anything else untouched.
func (e *Engine) ResolveAsset(location string) string {
	if asset, ok := e.assetManager.Get(location); ok {
		return asset.Path
	}
	return location
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Importer() *loaders.GLTFLoader {
	return e.importer
}

func (e *Engine) AssetManager() *assets.AssetManager {
	return e.assetManager
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}
