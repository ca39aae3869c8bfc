// Package config holds the settings of the previewer. Values are read from a
// TOML file and handed to the components that need them; nothing in the
// rendering core reads the file on its own.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

type Config struct {
	Window WindowConfig `toml:"window"`
	Log    LogConfig    `toml:"log"`
	Assets AssetsConfig `toml:"assets"`
	Viewer ViewerConfig `toml:"viewer"`
}

type WindowConfig struct {
	// The application name used in windowing.
	Title string `toml:"title"`
	// Window starting position x axis.
	X uint32 `toml:"x"`
	// Window starting position y axis.
	Y uint32 `toml:"y"`
	// Window starting width.
	Width uint32 `toml:"width"`
	// Window starting height.
	Height uint32 `toml:"height"`
}

type LogConfig struct {
	Level core.LogLevel `toml:"level"`
}

type AssetsConfig struct {
	// Root directory holding the extracted archive contents.
	Root string `toml:"root"`
	// Patch directories searched before Root, highest priority first.
	Patches []string `toml:"patches"`
	// Watch keeps the directory index current while the previewer runs.
	Watch bool `toml:"watch"`
}

type ViewerConfig struct {
	CameraSpeed float32              `toml:"camera_speed"`
	FieldOfView float32              `toml:"field_of_view"`
	ClearColor  Color                `toml:"clear_color"`
	GridColor   Color                `toml:"grid_color"`
	BoundsColor Color                `toml:"bounds_color"`
	DefaultWrap metadata.TextureWrap `toml:"default_wrap"`
	ShowBounds  bool                 `toml:"show_bounds"`
	// Instances is the number of copies drawn when previewing a model.
	Instances int `toml:"instances"`
}

// Color is an RGBA colour with components in [0, 1].
type Color [4]float32

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "archview",
			X:      100,
			Y:      100,
			Width:  1280,
			Height: 720,
		},
		Log: LogConfig{
			Level: core.LogLevelInfo,
		},
		Assets: AssetsConfig{
			Root:  "assets",
			Watch: true,
		},
		Viewer: ViewerConfig{
			CameraSpeed: 25.0,
			FieldOfView: 45.0,
			ClearColor:  Color{0.12, 0.12, 0.14, 1.0},
			GridColor:   Color{0.45, 0.45, 0.45, 1.0},
			BoundsColor: Color{1.0, 0.85, 0.2, 1.0},
			DefaultWrap: metadata.TextureWrapRepeat,
			ShowBounds:  false,
			Instances:   1,
		},
	}
}

// Load reads the file at path on top of the defaults. A missing file is not
// an error and yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			core.LogInfo("config file '%s' not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		err = fmt.Errorf("func Load - failed to parse config '%s': %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size must be > 0, got %dx%d: %w", c.Window.Width, c.Window.Height, core.ErrInvalidArgument)
	}
	if !c.Log.Level.Valid() {
		return fmt.Errorf("unknown log level '%s': %w", c.Log.Level, core.ErrInvalidArgument)
	}
	if c.Assets.Root == "" {
		return fmt.Errorf("assets root must be set: %w", core.ErrInvalidArgument)
	}
	if c.Viewer.FieldOfView <= 0 || c.Viewer.FieldOfView >= 180 {
		return fmt.Errorf("field of view must be in (0, 180), got %v: %w", c.Viewer.FieldOfView, core.ErrInvalidArgument)
	}
	if c.Viewer.Instances < 1 {
		return fmt.Errorf("instances must be >= 1, got %d: %w", c.Viewer.Instances, core.ErrInvalidArgument)
	}
	if !c.Viewer.DefaultWrap.Valid() {
		return fmt.Errorf("unknown texture wrap '%s': %w", c.Viewer.DefaultWrap, core.ErrInvalidArgument)
	}
	return nil
}
