// Package config loads the settings of the wlcomp command from a TOML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deedles.dev/wlcomp/compositor"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to the upper-cased keys of every setting to
// form the name of the environment variable that overrides it, so
// that output.width becomes WLCOMP_OUTPUT_WIDTH.
const EnvPrefix = "WLCOMP"

// Config is the complete configuration of a compositor.
type Config struct {
	// Socket is the name of the listening socket in $XDG_RUNTIME_DIR.
	Socket string `mapstructure:"socket"`

	// FrameRate is the number of times per second that frame
	// callbacks are completed. Zero disables the frame clock.
	FrameRate int `mapstructure:"frame_rate"`

	Output     OutputConfig     `mapstructure:"output"`
	Extensions ExtensionsConfig `mapstructure:"extensions"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// OutputConfig describes the compositor's screen.
type OutputConfig struct {
	X      int `mapstructure:"x"`
	Y      int `mapstructure:"y"`
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`

	// PhysicalWidth and PhysicalHeight are in millimeters.
	PhysicalWidth  int `mapstructure:"physical_width"`
	PhysicalHeight int `mapstructure:"physical_height"`

	Make  string `mapstructure:"make"`
	Model string `mapstructure:"model"`

	// Orientation is one of the names accepted by
	// compositor.ParseOrientation.
	Orientation string `mapstructure:"orientation"`

	// Refresh is in mHz.
	Refresh int `mapstructure:"refresh"`
}

// ExtensionsConfig selects the optional globals.
type ExtensionsConfig struct {
	SubSurface    bool   `mapstructure:"sub_surface"`
	Touch         bool   `mapstructure:"touch"`
	TouchFlags    uint32 `mapstructure:"touch_flags"`
	WindowManager bool   `mapstructure:"window_manager"`
}

type LoggingConfig struct {
	// Level overrides $LOG_LEVEL when it is not empty.
	Level string `mapstructure:"level"`
}

// Default is the configuration used for settings that are missing
// from both the file and the environment.
var Default = Config{
	Socket:    "wayland-0",
	FrameRate: 60,
	Output: OutputConfig{
		Width:       800,
		Height:      600,
		Make:        "wlcomp",
		Model:       "headless",
		Orientation: "primary",
		Refresh:     60000,
	},
	Extensions: ExtensionsConfig{
		SubSurface:    true,
		Touch:         true,
		WindowManager: true,
	},
}

// SearchPath returns the directories in which Load looks for
// wlcomp.toml, in order of precedence.
func SearchPath() []string {
	var dirs []string
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "wlcomp"))
	}
	return append(dirs, "/etc/wlcomp", ".")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("socket", Default.Socket)
	v.SetDefault("frame_rate", Default.FrameRate)

	v.SetDefault("output.x", Default.Output.X)
	v.SetDefault("output.y", Default.Output.Y)
	v.SetDefault("output.width", Default.Output.Width)
	v.SetDefault("output.height", Default.Output.Height)
	v.SetDefault("output.physical_width", Default.Output.PhysicalWidth)
	v.SetDefault("output.physical_height", Default.Output.PhysicalHeight)
	v.SetDefault("output.make", Default.Output.Make)
	v.SetDefault("output.model", Default.Output.Model)
	v.SetDefault("output.orientation", Default.Output.Orientation)
	v.SetDefault("output.refresh", Default.Output.Refresh)

	v.SetDefault("extensions.sub_surface", Default.Extensions.SubSurface)
	v.SetDefault("extensions.touch", Default.Extensions.Touch)
	v.SetDefault("extensions.touch_flags", Default.Extensions.TouchFlags)
	v.SetDefault("extensions.window_manager", Default.Extensions.WindowManager)

	v.SetDefault("logging.level", Default.Logging.Level)
}

// Load reads the configuration. If path is empty, wlcomp.toml is
// searched for in SearchPath and its absence is not an error.
// Otherwise the file at path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wlcomp")
		for _, dir := range SearchPath() {
			v.AddConfigPath(dir)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if (path != "") || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks for values that the compositor cannot use.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Socket == "" {
		errs = append(errs, errors.New("socket must not be empty"))
	}
	if cfg.FrameRate < 0 {
		errs = append(errs, fmt.Errorf("invalid frame_rate %v", cfg.FrameRate))
	}
	if (cfg.Output.Width <= 0) || (cfg.Output.Height <= 0) {
		errs = append(errs, fmt.Errorf("invalid output size %vx%v", cfg.Output.Width, cfg.Output.Height))
	}
	if _, err := cfg.Orientation(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Orientation parses Output.Orientation.
func (cfg *Config) Orientation() (compositor.Orientation, error) {
	return compositor.ParseOrientation(cfg.Output.Orientation)
}

// Geometry returns the output settings in the form that the
// compositor uses.
func (cfg *Config) Geometry() compositor.Geometry {
	o := cfg.Output
	return compositor.Geometry{
		Rect:         image.Rect(o.X, o.Y, o.X+o.Width, o.Y+o.Height),
		PhysicalSize: image.Pt(o.PhysicalWidth, o.PhysicalHeight),
		Make:         o.Make,
		Model:        o.Model,
		Refresh:      int32(o.Refresh),
	}
}

// FrameInterval returns the time between frames, or zero if the frame
// clock is disabled.
func (cfg *Config) FrameInterval() time.Duration {
	if cfg.FrameRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(cfg.FrameRate)
}
