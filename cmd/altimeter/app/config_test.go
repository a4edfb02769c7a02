package app

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "altimeter.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	return path
}

const minimalConfig = `
bridge:
  endpoint: http://127.0.0.1:9080/webapi
`

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Settings.LogLevel != "info" {
		t.Errorf("logLevel = %q, want %q", config.Settings.LogLevel, "info")
	}
	if config.Settings.LogFormat != LogFormatText {
		t.Errorf("logFormat = %q, want %q", config.Settings.LogFormat, LogFormatText)
	}
	if got := time.Duration(config.Settings.Period); got != DefaultPeriod {
		t.Errorf("period = %s, want %s", got, DefaultPeriod)
	}
	if got := time.Duration(config.Bridge.Timeout); got != time.Second {
		t.Errorf("timeout = %s, want %s", got, time.Second)
	}
	if config.Bridge.SkipNetworkCheck {
		t.Error("skipNetworkCheck = true, want false")
	}
	if config.Instrument.Theme != "classic" {
		t.Errorf("theme = %q, want %q", config.Instrument.Theme, "classic")
	}
	if config.Display.Type != DisplayPNG {
		t.Errorf("display type = %q, want %q", config.Display.Type, DisplayPNG)
	}
	if config.Display.Path != DefaultPNGPath {
		t.Errorf("display path = %q, want %q", config.Display.Path, DefaultPNGPath)
	}
	if config.Capture.Enabled {
		t.Error("capture enabled = true, want false")
	}
}

const fullConfig = `
settings:
  logLevel: debug
  logFormat: pretty
  period: 100ms
bridge:
  endpoint: http://10.0.0.5:9080/webapi
  timeout: 250ms
  skipNetworkCheck: true
  vars:
    altitude: "(A:PRESSURE ALTITUDE, Feet)"
instrument:
  theme: night
  assetDir: /opt/altimeter/assets
  profiles:
    - match: Cessna
      altitudeOffset: 50
      bugAngleOffset: -5
display:
  type: framebuffer
  path: /dev/fb1
  width: 480
  height: 480
  format: xrgb8888
capture:
  enabled: true
  path: /var/lib/altimeter/flight.db
`

func TestLoadConfigFull(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Settings.LogLevel != "debug" {
		t.Errorf("logLevel = %q, want %q", config.Settings.LogLevel, "debug")
	}
	if config.Settings.LogFormat != LogFormatPretty {
		t.Errorf("logFormat = %q, want %q", config.Settings.LogFormat, LogFormatPretty)
	}
	if got := time.Duration(config.Settings.Period); got != 100*time.Millisecond {
		t.Errorf("period = %s, want 100ms", got)
	}
	if got := time.Duration(config.Bridge.Timeout); got != 250*time.Millisecond {
		t.Errorf("timeout = %s, want 250ms", got)
	}
	if !config.Bridge.SkipNetworkCheck {
		t.Error("skipNetworkCheck = false, want true")
	}
	if got := config.Bridge.Vars.Altitude; got != "(A:PRESSURE ALTITUDE, Feet)" {
		t.Errorf("vars.altitude = %q, want override", got)
	}
	if config.Bridge.Vars.Title != "" {
		t.Errorf("vars.title = %q, want empty", config.Bridge.Vars.Title)
	}
	if config.Instrument.Theme != "night" {
		t.Errorf("theme = %q, want %q", config.Instrument.Theme, "night")
	}
	if config.Instrument.AssetDir != "/opt/altimeter/assets" {
		t.Errorf("assetDir = %q", config.Instrument.AssetDir)
	}
	if len(config.Instrument.Profiles) != 1 {
		t.Fatalf("profiles = %d, want 1", len(config.Instrument.Profiles))
	}
	p := config.Instrument.Profiles[0]
	if p.Match != "Cessna" || p.AltitudeOffset != 50 || p.BugAngleOffset != -5 {
		t.Errorf("profile = %+v", p)
	}
	if config.Display.Type != DisplayFramebuffer {
		t.Errorf("display type = %q, want %q", config.Display.Type, DisplayFramebuffer)
	}
	if config.Display.Path != "/dev/fb1" {
		t.Errorf("display path = %q, want /dev/fb1", config.Display.Path)
	}
	if config.Display.Format != "xrgb8888" {
		t.Errorf("display format = %q, want xrgb8888", config.Display.Format)
	}
	if !config.Capture.Enabled || config.Capture.Path != "/var/lib/altimeter/flight.db" {
		t.Errorf("capture = %+v", config.Capture)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing endpoint",
			body:    "settings:\n  logLevel: info\n",
			wantErr: "bridge.endpoint",
		},
		{
			name:    "bad log level",
			body:    minimalConfig + "settings:\n  logLevel: verbose\n",
			wantErr: "settings.logLevel",
		},
		{
			name:    "bad log format",
			body:    minimalConfig + "settings:\n  logFormat: xml\n",
			wantErr: "settings.logFormat",
		},
		{
			name:    "bad period",
			body:    minimalConfig + "settings:\n  period: fast\n",
			wantErr: "failed to parse",
		},
		{
			name:    "bad theme",
			body:    minimalConfig + "instrument:\n  theme: chrome\n",
			wantErr: "instrument.theme",
		},
		{
			name:    "bad display type",
			body:    minimalConfig + "display:\n  type: hdmi\n",
			wantErr: "display.type",
		},
		{
			name:    "bad pixel format",
			body:    minimalConfig + "display:\n  type: framebuffer\n  format: rgb888\n",
			wantErr: "display.format",
		},
		{
			name:    "capture without path",
			body:    minimalConfig + "capture:\n  enabled: true\n",
			wantErr: "capture.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "WARN", want: slog.LevelWarn},
		{in: " info ", want: slog.LevelInfo},
		{in: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLogLevel(%q) error = nil, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLogLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimeDurationJSON(t *testing.T) {
	d := TimeDuration(200 * time.Millisecond)

	p, err := json.Marshal(&d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(p) != `"200ms"` {
		t.Errorf("Marshal() = %s, want %q", p, `"200ms"`)
	}

	var back TimeDuration
	if err := json.Unmarshal(p, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back != d {
		t.Errorf("round trip = %s, want %s", &back, &d)
	}
}
