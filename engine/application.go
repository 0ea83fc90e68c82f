package engine

import (
	"github.com/spaghettifunk/bolt/engine/config"
	"github.com/spaghettifunk/bolt/engine/core"
)

type ApplicationConfig struct {
	// Starting width of the framebuffer.
	StartWidth uint32
	// Starting height of the framebuffer.
	StartHeight uint32
	// The application name passed to the renderer backend.
	Name     string
	LogLevel core.LogLevel
	// Frames to run before Run returns. 0 runs until Stop.
	MaxFrames uint64
	// Frame cap. 0 leaves the loop unthrottled.
	TargetFPS float64
	// Directory indexed by the asset manager. Empty disables it.
	AssetsDir    string
	WatchAssets  bool
	ServeAddress string
	Workers      int
	Renderer     config.Renderer
	Camera       config.Camera
}

func NewApplicationConfig(cfg *config.Config) *ApplicationConfig {
	return &ApplicationConfig{
		StartWidth:   cfg.Application.Width,
		StartHeight:  cfg.Application.Height,
		Name:         cfg.Application.Name,
		LogLevel:     cfg.LogLevel(),
		MaxFrames:    cfg.Application.Frames,
		TargetFPS:    cfg.Application.TargetFPS,
		AssetsDir:    cfg.Assets.Dir,
		WatchAssets:  cfg.Assets.Watch,
		ServeAddress: cfg.Assets.ServeAddress,
		Workers:      2,
		Renderer:     cfg.Renderer,
		Camera:       cfg.Camera,
	}
}
