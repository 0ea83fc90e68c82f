package engine

import (
	"github.com/spaghettifunk/bolt/engine/systems"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by the engine before FnInitialize.
	Engine        *Engine
	SystemManager *systems.SystemManager
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	FnShutdown    Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(renderer *systems.RendererSystem, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
