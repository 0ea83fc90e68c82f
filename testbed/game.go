package testbed

import (
	"fmt"
	"path"

	"github.com/spaghettifunk/bolt/engine"
	"github.com/spaghettifunk/bolt/engine/animation"
	"github.com/spaghettifunk/bolt/engine/assets/loaders"
	"github.com/spaghettifunk/bolt/engine/config"
	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/systems"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	config  *config.Config
	model   *loaders.Model
	sampler *animation.Sampler
	// bumped on every reload so late loads of an older request are dropped
	generation int
	loads      int
}

func NewTestGame(cfg *config.Config) (*TestGame, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: engine.NewApplicationConfig(cfg),
			State:             &gameState{config: cfg},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.Engine == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}
	state := g.state()

	if state.config.Assets.Watch {
		g.Engine.AssetManager().OnModelChanged(func(name string) {
			if path.Clean(name) != path.Clean(state.config.Assets.Model) {
				return
			}
			core.LogInfo("'%s' changed on disk, reloading", name)
			if err := g.loadModel(); err != nil {
				core.LogError("reload of '%s' failed: %s", name, err)
			}
		})
	}
	return g.loadModel()
}

func (g *TestGame) loadModel() error {
	state := g.state()
	state.generation++
	generation := state.generation
	return g.Engine.LoadModelAsync(state.config.Assets.Model, func(model *loaders.Model, err error) {
		if err != nil {
			core.LogError("failed to load '%s': %s", state.config.Assets.Model, err)
			return
		}
		if generation != state.generation {
			model.Delete()
			return
		}
		g.setModel(model)
	})
}

func (g *TestGame) setModel(model *loaders.Model) {
	state := g.state()
	if state.model != nil {
		state.model.Delete()
	}
	state.model = model
	state.loads++

	state.sampler = animation.NewSampler(model.Clips)
	state.sampler.Speed = state.config.Animation.Speed
	clip := state.config.Animation.Clip
	if clip == "" && len(state.sampler.ClipNames()) > 0 {
		clip = state.sampler.ClipNames()[0]
	}
	if clip != "" {
		if err := state.sampler.SelectClip(clip); err != nil {
			core.LogWarn("%s, available clips: %v", err, state.sampler.ClipNames())
		}
	}

	core.LogInfo("loaded '%s': %d meshes, %d clips", model.Name, len(model.Meshes), len(model.Clips))
	if state.config.Debug.DumpScene {
		core.LogInfo("scene:\n%s", SDump(model))
	}
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	if state.sampler != nil {
		state.sampler.Advance(float32(deltaTime))
	}
	if speed := state.config.Camera.OrbitSpeed; speed != 0 {
		g.SystemManager.CameraSystem.GetDefault().Orbit(speed*float32(deltaTime), 0)
	}
	return nil
}

func (g *TestGame) Render(renderer *systems.RendererSystem, deltaTime float64) error {
	if model := g.state().model; model != nil {
		renderer.Draw(model.Root)
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	core.LogDebug("TestGame resized to %dx%d", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	if state.model != nil {
		state.model.Delete()
		state.model = nil
	}
	return nil
}
