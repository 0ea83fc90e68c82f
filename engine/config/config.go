package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/core"
)

type Application struct {
	Name   string `toml:"name"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	/** @brief Frames to run before exiting. 0 runs until stopped. */
	Frames    uint64  `toml:"frames"`
	TargetFPS float64 `toml:"target_fps"`
}

type Log struct {
	Level string `toml:"level"`
}

type Renderer struct {
	AutoSort    bool       `toml:"auto_sort"`
	DepthTest   bool       `toml:"depth_test"`
	ClearColour [4]float32 `toml:"clear_colour"`
}

type Camera struct {
	/** @brief Vertical field of view in degrees. */
	FOV      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Position [3]float32 `toml:"position"`
	Target   [3]float32 `toml:"target"`
	/** @brief Orbit speed around Target in radians per second. */
	OrbitSpeed float32 `toml:"orbit_speed"`
}

type Assets struct {
	Dir string `toml:"dir"`
	/** @brief Model to import, either a name under Dir or an absolute URL. */
	Model string `toml:"model"`
	Watch bool   `toml:"watch"`
	/** @brief Address of the asset HTTP server. Empty disables it. */
	ServeAddress string `toml:"serve_address"`
}

type Animation struct {
	Clip  string  `toml:"clip"`
	Speed float32 `toml:"speed"`
}

type Debug struct {
	DumpScene bool `toml:"dump_scene"`
}

type Config struct {
	Application Application `toml:"application"`
	Log         Log         `toml:"log"`
	Renderer    Renderer    `toml:"renderer"`
	Camera      Camera      `toml:"camera"`
	Assets      Assets      `toml:"assets"`
	Animation   Animation   `toml:"animation"`
	Debug       Debug       `toml:"debug"`
}

func Default() *Config {
	return &Config{
		Application: Application{
			Name:      "Bolt Testbed",
			Width:     1280,
			Height:    720,
			TargetFPS: 60,
		},
		Log: Log{Level: "info"},
		Renderer: Renderer{
			AutoSort:    true,
			DepthTest:   true,
			ClearColour: [4]float32{0, 0, 0.2, 1},
		},
		Camera: Camera{
			FOV:      45,
			Near:     0.1,
			Far:      1000,
			Position: [3]float32{0, 0, 5},
		},
		Assets: Assets{
			Dir:   "assets",
			Model: "models/scene.glb",
		},
		Animation: Animation{
			Speed: 1,
		},
	}
}

/** @brief Parses TOML over the defaults. Keys missing from data keep their default. */
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, errors.Errorf("invalid config at %d:%d: %s", row, col, derr.Error())
		}
		return nil, errors.Wrap(err, "invalid config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogInfo("no config at '%s', using defaults", path)
			return Default(), nil
		}
		return nil, errors.Wrapf(err, "failed to read config '%s'", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "'%s'", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Application.Width == 0 || c.Application.Height == 0 {
		return errors.Errorf("application size must be positive, got %dx%d", c.Application.Width, c.Application.Height)
	}
	if c.Application.TargetFPS < 0 {
		return errors.Errorf("target fps must not be negative, got %f", c.Application.TargetFPS)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return errors.Errorf("camera fov must be within (0, 180), got %f", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return errors.Errorf("camera planes must satisfy 0 < near < far, got %f and %f", c.Camera.Near, c.Camera.Far)
	}
	return nil
}

func (c *Config) LogLevel() core.LogLevel {
	return core.ParseLogLevel(c.Log.Level)
}

// Encode renders the config as TOML, used to write a starting config.toml.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
