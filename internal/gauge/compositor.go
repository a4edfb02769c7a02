package gauge

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/roman-kulish/sim-altimeter/internal/instrument"
)

// Compositor stamps display states onto a single reusable frame. It is not
// safe for concurrent use; the instrument loop is the only writer.
type Compositor struct {
	assets     *Assets
	layout     Layout
	background *image.Uniform
	frame      *image.RGBA
}

func NewCompositor(assets *Assets, layout Layout, theme Theme) *Compositor {
	return &Compositor{
		assets:     assets,
		layout:     layout,
		background: image.NewUniform(theme.Background),
		frame:      image.NewRGBA(image.Rect(0, 0, layout.Size, layout.Size)),
	}
}

// Compose redraws the frame for state and returns it. The background fill
// resets the buffer, so nothing from the previous cycle survives. Layers go
// down in fixed order: altitude drums, pressure drums, face, needle, bug.
// The returned frame is owned by the Compositor and valid until the next
// Compose.
func (c *Compositor) Compose(state instrument.State) *image.RGBA {
	draw.Draw(c.frame, c.frame.Bounds(), c.background, image.Point{}, draw.Src)

	c.drawDrum(c.layout.AltDrums[0], c.assets.AltStrip, c.layout.AltOffsets[Digit(state.Altitude, 5)])
	c.drawDrum(c.layout.AltDrums[1], c.assets.AltStrip, c.layout.AltOffsets[Digit(state.Altitude, 4)])

	for i, window := range c.layout.BaroDrums {
		d := Digit(state.PressureCode, len(c.layout.BaroDrums)-i)
		c.drawDrum(window, c.assets.BaroStrip, c.layout.BaroOffsets[d])
	}

	draw.Draw(c.frame, c.frame.Bounds(), c.assets.Face, image.Point{}, draw.Over)

	c.rotateOnto(c.assets.Needle, NeedleAngle(state.Altitude))
	c.rotateOnto(c.assets.Bug, float64(state.BugAngle))

	return c.frame
}

// drawDrum blits one strip cell into its window, offset picking the digit.
func (c *Compositor) drawDrum(window image.Rectangle, strip *image.RGBA, offset int) {
	draw.Draw(c.frame, window, strip, image.Pt(0, offset), draw.Src)
}

// rotateOnto draws src over the frame rotated clockwise by deg around the
// pivot. Transparent source pixels leave the frame untouched.
func (c *Compositor) rotateOnto(src *image.RGBA, deg float64) {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	cx, cy := float64(c.layout.Pivot.X), float64(c.layout.Pivot.Y)

	m := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}

	xdraw.ApproxBiLinear.Transform(c.frame, m, src, src.Bounds(), xdraw.Over, nil)
}
