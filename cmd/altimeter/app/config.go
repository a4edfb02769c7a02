package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/sim-altimeter/internal/bridge"
	"github.com/roman-kulish/sim-altimeter/internal/display"
	"github.com/roman-kulish/sim-altimeter/internal/gauge"
)

const (
	DisplayPNG         DisplayType = "png"
	DisplayFramebuffer DisplayType = "framebuffer"

	LogFormatText   LogFormat = "text"
	LogFormatJSON   LogFormat = "json"
	LogFormatPretty LogFormat = "pretty"

	// DefaultPeriod is the stock display cycle, five frames per second.
	DefaultPeriod = 200 * time.Millisecond

	DefaultPNGPath         = "altimeter.png"
	DefaultFramebufferPath = "/dev/fb0"
)

var (
	validDisplayTypes = map[DisplayType]struct{}{
		DisplayPNG:         {},
		DisplayFramebuffer: {},
	}

	validLogFormats = map[LogFormat]struct{}{
		LogFormatText:   {},
		LogFormatJSON:   {},
		LogFormatPretty: {},
	}
)

type DisplayType string

func (d DisplayType) String() string {
	return string(d)
}

type LogFormat string

func (f LogFormat) String() string {
	return string(f)
}

type TimeDuration time.Duration

func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("app.TimeDuration: failed to parse: %s", err)
	}

	*d = TimeDuration(duration)
	return nil
}

func (d *TimeDuration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *TimeDuration) UnmarshalJSON(bytes []byte) error {
	var v string
	if err := json.Unmarshal(bytes, &v); err != nil {
		return err
	}

	duration, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("app.TimeDuration: failed to parse: %s", err)
	}

	*d = TimeDuration(duration)
	return nil
}

func (d *TimeDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *TimeDuration) String() string {
	return time.Duration(*d).String()
}

// Config represents the main instrument configuration
type Config struct {
	Settings   Settings         `yaml:"settings" json:"settings"`
	Bridge     BridgeConfig     `yaml:"bridge" json:"bridge"`
	Instrument InstrumentConfig `yaml:"instrument" json:"instrument"`
	Display    DisplayConfig    `yaml:"display" json:"display"`
	Capture    CaptureConfig    `yaml:"capture" json:"capture"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel  string       `yaml:"logLevel" json:"logLevel"`   // debug, info, warn or error (default: info)
	LogFormat LogFormat    `yaml:"logFormat" json:"logFormat"` // text, json or pretty (default: text)
	Period    TimeDuration `yaml:"period" json:"period"`       // display cycle period (default: 200ms)
}

// BridgeConfig points the instrument at the sim-variable bridge
type BridgeConfig struct {
	Endpoint         string       `yaml:"endpoint" json:"endpoint"`
	Timeout          TimeDuration `yaml:"timeout" json:"timeout"` // per-poll budget (default: 1s)
	SkipNetworkCheck bool         `yaml:"skipNetworkCheck" json:"skipNetworkCheck"`
	Vars             VarsConfig   `yaml:"vars" json:"vars"`
}

// VarsConfig overrides individual bridge expressions; empty fields keep the
// stock MSFS ones
type VarsConfig struct {
	Altitude string `yaml:"altitude" json:"altitude"`
	Pressure string `yaml:"pressure" json:"pressure"`
	Bug      string `yaml:"bug" json:"bug"`
	Title    string `yaml:"title" json:"title"`
}

// InstrumentConfig selects the gauge artwork and per-aircraft adjustments
type InstrumentConfig struct {
	Theme    string          `yaml:"theme" json:"theme"`       // classic, amber, green or night
	AssetDir string          `yaml:"assetDir" json:"assetDir"` // optional PNG override directory
	Profiles []ProfileConfig `yaml:"profiles" json:"profiles"`
}

// ProfileConfig adjusts the display for aircraft whose title starts with
// Match. Profiles apply in order and the first match wins.
type ProfileConfig struct {
	Match          string `yaml:"match" json:"match"`
	AltitudeOffset int    `yaml:"altitudeOffset" json:"altitudeOffset"` // feet
	BugAngleOffset int    `yaml:"bugAngleOffset" json:"bugAngleOffset"` // degrees
}

// DisplayConfig selects and configures the display sink. Path is the
// output file for the png sink and the device node for the framebuffer.
type DisplayConfig struct {
	Type DisplayType `yaml:"type" json:"type"` // png or framebuffer
	Path string      `yaml:"path" json:"path"`

	// Framebuffer geometry; zero width and height take the gauge size
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	Stride int    `yaml:"stride" json:"stride"` // bytes per row (default: packed)
	Format string `yaml:"format" json:"format"` // rgb565 or xrgb8888
}

// CaptureConfig enables flight capture
type CaptureConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"` // capture database file
}

// LoadConfig reads, validates and defaults the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate fills defaults and checks every section, naming the offending
// field on failure
func (c *Config) Validate() error {
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = "info"
	}
	if _, err := ParseLogLevel(c.Settings.LogLevel); err != nil {
		return fmt.Errorf("settings.logLevel: %w", err)
	}

	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = LogFormatText
	}
	if _, ok := validLogFormats[c.Settings.LogFormat]; !ok {
		return fmt.Errorf("settings.logFormat: unknown format '%s'", c.Settings.LogFormat)
	}

	if c.Settings.Period <= 0 {
		c.Settings.Period = TimeDuration(DefaultPeriod)
	}

	if c.Bridge.Endpoint == "" {
		return fmt.Errorf("bridge.endpoint: must be set")
	}
	if c.Bridge.Timeout < 0 {
		return fmt.Errorf("bridge.timeout: must not be negative: %s", &c.Bridge.Timeout)
	}
	if c.Bridge.Timeout == 0 {
		c.Bridge.Timeout = TimeDuration(bridge.DefaultTimeout)
	}

	if c.Instrument.Theme == "" {
		c.Instrument.Theme = gauge.DefaultTheme
	}
	if _, err := gauge.ParseTheme(c.Instrument.Theme); err != nil {
		return fmt.Errorf("instrument.theme: %w", err)
	}

	if c.Display.Type == "" {
		c.Display.Type = DisplayPNG
	}
	switch c.Display.Type {
	case DisplayPNG:
		if c.Display.Path == "" {
			c.Display.Path = DefaultPNGPath
		}

	case DisplayFramebuffer:
		if c.Display.Path == "" {
			c.Display.Path = DefaultFramebufferPath
		}
		if c.Display.Format == "" {
			c.Display.Format = display.RGB565.String()
		}
		if err := display.PixelFormat(c.Display.Format).Validate(); err != nil {
			return fmt.Errorf("display.format: %w", err)
		}
		if c.Display.Width < 0 || c.Display.Height < 0 {
			return fmt.Errorf("display: geometry %dx%d is not drawable", c.Display.Width, c.Display.Height)
		}
		if c.Display.Stride < 0 {
			return fmt.Errorf("display.stride: must not be negative: %d", c.Display.Stride)
		}

	default:
		return fmt.Errorf("display.type: unknown type '%s'", c.Display.Type)
	}

	if c.Capture.Enabled && c.Capture.Path == "" {
		return fmt.Errorf("capture.path: must be set when capture is enabled")
	}

	return nil
}

// ParseLogLevel maps a configuration level name onto a slog level
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level '%s'", s)
	}
}
