package gauge

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultTheme is used when the configuration names none.
const DefaultTheme = "classic"

// Theme is the palette the synthesized artwork is drawn with. Overridden
// PNG assets carry their own colors; only Background applies to them.
type Theme struct {
	Name string

	Background color.Color // frame fill behind the face
	FacePlate  color.Color // dial plate disk
	Bezel      color.Color // outer ring
	Markings   color.Color // ticks, numerals, labels, window frames
	WindowFill color.Color // drum backing
	DigitInk   color.Color // strip digits
	Needle     color.Color
	Bug        color.Color
}

// ParseTheme resolves a theme by name: classic, amber, green or night.
func ParseTheme(name string) (Theme, error) {
	if name == "" {
		name = DefaultTheme
	}

	theme, ok := themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}

	return theme, nil
}

// tinted builds a palette from a single hue the way the phosphor and
// backlit panel variants differ only in tint.
func tinted(name string, hue float64) Theme {
	return Theme{
		Name:       name,
		Background: color.Black,
		FacePlate:  colorful.Hsv(hue, 0.55, 0.08),
		Bezel:      colorful.Hsv(hue, 0.35, 0.30),
		Markings:   colorful.Hsv(hue, 0.85, 0.95),
		WindowFill: colorful.Hsv(hue, 0.60, 0.04),
		DigitInk:   colorful.Hsv(hue, 0.80, 1.00),
		Needle:     colorful.Hsv(hue, 0.70, 1.00),
		Bug:        colorful.Hsv(hue, 1.00, 1.00),
	}
}

var themes = map[string]Theme{
	"classic": {
		Name:       "classic",
		Background: color.Black,
		FacePlate:  color.RGBA{R: 0x17, G: 0x18, B: 0x1a, A: 0xff},
		Bezel:      color.RGBA{R: 0x4a, G: 0x4c, B: 0x50, A: 0xff},
		Markings:   colorful.Hsv(0, 0, 0.96),
		WindowFill: color.RGBA{R: 0x08, G: 0x08, B: 0x09, A: 0xff},
		DigitInk:   colorful.Hsv(0, 0, 0.98),
		Needle:     colorful.Hsv(0, 0, 0.92),
		Bug:        colorful.Hsv(28, 1, 1), // international orange
	},
	"amber": tinted("amber", 42),
	"green": tinted("green", 130),
	"night": tinted("night", 4),
}

// Themes lists the selectable theme names for config validation messages.
func Themes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
