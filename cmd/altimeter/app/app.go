package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/roman-kulish/sim-altimeter/internal/bridge"
	"github.com/roman-kulish/sim-altimeter/internal/display"
	"github.com/roman-kulish/sim-altimeter/internal/gauge"
	"github.com/roman-kulish/sim-altimeter/internal/instrument"
)

// NewLogger builds the logger the settings section asks for. Pretty output
// uses tint for colorized console logs during bench testing.
func NewLogger(s *Settings) *slog.Logger {
	level, _ := ParseLogLevel(s.LogLevel) // validated on load

	switch s.LogFormat {
	case LogFormatPretty:
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))

	case LogFormatJSON:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
}

// Run wires the instrument together and drives the display loop until the
// context is cancelled.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	client, err := createClient(&config.Bridge)
	if err != nil {
		return fmt.Errorf("creating bridge client: %w", err)
	}

	theme, err := gauge.ParseTheme(config.Instrument.Theme)
	if err != nil {
		return fmt.Errorf("selecting theme: %w", err)
	}

	layout := gauge.DefaultLayout()
	assets, err := gauge.Load(config.Instrument.AssetDir, layout, theme)
	if err != nil {
		return fmt.Errorf("loading gauge assets: %w", err)
	}

	device, err := createDisplay(&config.Display, layout)
	if err != nil {
		return fmt.Errorf("creating display: %w", err)
	}
	defer func() {
		if cErr := device.Close(); cErr != nil {
			logger.Error(fmt.Sprintf("closing display: %s", cErr))
		}
	}()

	if want := image.Rect(0, 0, layout.Size, layout.Size); device.Bounds() != want {
		return fmt.Errorf("display is %v, the gauge needs %v", device.Bounds(), want)
	}

	d := driver{
		poller:     client,
		reducer:    createReducer(config.Instrument.Profiles),
		compositor: gauge.NewCompositor(assets, layout, theme),
		device:     device,
		logger:     logger,
		period:     time.Duration(config.Settings.Period),
	}

	if config.Capture.Enabled {
		rec, err := createRecorder(config, logger)
		if err != nil {
			return fmt.Errorf("creating capture recorder: %w", err)
		}
		defer func() {
			if cErr := rec.Close(); cErr != nil {
				logger.Error(fmt.Sprintf("closing capture: %s", cErr))
			}
		}()

		d.recorder = rec
	}

	logger.Info("instrument running",
		slog.String("endpoint", config.Bridge.Endpoint),
		slog.String("theme", config.Instrument.Theme),
		slog.String("display", config.Display.Type.String()),
		slog.Duration("period", d.period))

	return d.run(ctx)
}

func createClient(config *BridgeConfig) (*bridge.Client, error) {
	vars := bridge.DefaultVars()
	if config.Vars.Altitude != "" {
		vars.Altitude = config.Vars.Altitude
	}
	if config.Vars.Pressure != "" {
		vars.Pressure = config.Vars.Pressure
	}
	if config.Vars.Bug != "" {
		vars.Bug = config.Vars.Bug
	}
	if config.Vars.Title != "" {
		vars.Title = config.Vars.Title
	}

	options := []func(*bridge.Client){
		bridge.WithHTTPClient(&http.Client{Timeout: time.Duration(config.Timeout)}),
	}
	if config.SkipNetworkCheck {
		options = append(options, bridge.WithConnectivity(bridge.Always(true)))
	}

	return bridge.NewClient(config.Endpoint, vars, options...)
}

func createReducer(profiles []ProfileConfig) *instrument.Reducer {
	options := make([]func(*instrument.Reducer), 0, len(profiles))
	for _, p := range profiles {
		options = append(options, instrument.WithProfile(p.Match, adjustment(p)))
	}

	return instrument.NewReducer(options...)
}

// adjustment turns one profile into the hook it registers with the reducer.
func adjustment(p ProfileConfig) instrument.AdjustFunc {
	return func(s instrument.State, _ *bridge.Sample) instrument.State {
		s.Altitude += p.AltitudeOffset
		s.BugAngle += p.BugAngleOffset
		return s
	}
}

func createDisplay(config *DisplayConfig, layout gauge.Layout) (display.Device, error) {
	bounds := image.Rect(0, 0, layout.Size, layout.Size)

	switch config.Type {
	case DisplayPNG:
		return display.NewPNGWriter(config.Path, bounds)

	case DisplayFramebuffer:
		fb := display.FramebufferConfig{
			Path:   config.Path,
			Width:  config.Width,
			Height: config.Height,
			Stride: config.Stride,
			Format: display.PixelFormat(config.Format),
		}
		if fb.Width == 0 {
			fb.Width = layout.Size
		}
		if fb.Height == 0 {
			fb.Height = layout.Size
		}

		return display.OpenFramebuffer(fb)

	default:
		return nil, fmt.Errorf("unknown display type '%s'", config.Type)
	}
}
