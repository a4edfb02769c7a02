package gauge

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
)

const (
	dpi = 72.0 // 1pt == 1px, so the sizes below are pixel sizes

	numeralFontSize = 30.0
	labelFontSize   = 14.0
	altDigitSize    = 46.0
	baroDigitSize   = 24.0
)

// Override file names looked up under the asset directory.
const (
	faceFile      = "face.png"
	needleFile    = "needle.png"
	bugFile       = "bug.png"
	altStripFile  = "strip_alt.png"
	baroStripFile = "strip_baro.png"
)

// Assets bundles the artwork stamped onto every frame. A bundle is
// immutable once loaded and safe to share.
type Assets struct {
	Face      *image.RGBA // plate, ticks, numerals, window frames; drum windows are transparent
	Needle    *image.RGBA // needle pointing at zero, face-sized canvas
	Bug       *image.RGBA // bug marker at zero, face-sized canvas
	AltStrip  *image.RGBA // altitude digit strip, ten cells tall
	BaroStrip *image.RGBA // pressure digit strip, ten cells tall
}

// Load returns the complete bundle for layout. PNG files under dir replace
// individual pieces; a missing file, or an empty dir, falls back to drawing
// that piece from the theme, so a successful Load is always a full bundle.
// Overrides must match the layout's pixel sizes exactly.
func Load(dir string, layout Layout, theme Theme) (*Assets, error) {
	square := image.Rect(0, 0, layout.Size, layout.Size)
	altRect := image.Rect(0, 0, layout.AltCell.X, 10*layout.AltCell.Y)
	baroRect := image.Rect(0, 0, layout.BaroCell.X, 10*layout.BaroCell.Y)

	fnt, err := freetype.ParseFont(gomonobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing gauge font: %w", err)
	}

	var a Assets

	if a.Face, err = override(dir, faceFile, square); err != nil {
		return nil, err
	}
	if a.Face == nil {
		if a.Face, err = drawFace(layout, theme, fnt); err != nil {
			return nil, fmt.Errorf("drawing face: %w", err)
		}
	}

	if a.Needle, err = override(dir, needleFile, square); err != nil {
		return nil, err
	}
	if a.Needle == nil {
		a.Needle = drawNeedle(layout, theme)
	}

	if a.Bug, err = override(dir, bugFile, square); err != nil {
		return nil, err
	}
	if a.Bug == nil {
		a.Bug = drawBug(layout, theme)
	}

	if a.AltStrip, err = override(dir, altStripFile, altRect); err != nil {
		return nil, err
	}
	if a.AltStrip == nil {
		if a.AltStrip, err = drawStrip(layout.AltCell, theme, fnt, altDigitSize); err != nil {
			return nil, fmt.Errorf("drawing altitude strip: %w", err)
		}
	}

	if a.BaroStrip, err = override(dir, baroStripFile, baroRect); err != nil {
		return nil, err
	}
	if a.BaroStrip == nil {
		if a.BaroStrip, err = drawStrip(layout.BaroCell, theme, fnt, baroDigitSize); err != nil {
			return nil, fmt.Errorf("drawing pressure strip: %w", err)
		}
	}

	return &a, nil
}

// override loads one replacement asset, or nil when dir does not carry it.
func override(dir, name string, want image.Rectangle) (*image.RGBA, error) {
	if dir == "" {
		return nil, nil
	}

	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening asset %s: %w", name, err)
	}
	defer f.Close()

	src, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding asset %s: %w", name, err)
	}
	if src.Bounds().Size() != want.Size() {
		return nil, fmt.Errorf("asset %s is %v, want %v", name, src.Bounds().Size(), want.Size())
	}

	rgba := image.NewRGBA(want)
	draw.Draw(rgba, want, src, src.Bounds().Min, draw.Src)

	return rgba, nil
}

func drawFace(l Layout, t Theme, fnt *truetype.Font) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, l.Size, l.Size))

	fillRing(img, l.Pivot, l.BezelInner, l.BezelOuter, t.Bezel)
	fillDisk(img, l.Pivot, l.PlateRadius, t.FacePlate)
	drawTicks(img, l, t)

	// punch the drum windows through the plate so the strips underneath
	// show, and frame each opening
	for _, w := range l.AltDrums {
		punchWindow(img, w, t.Markings)
	}
	for _, w := range l.BaroDrums {
		punchWindow(img, w, t.Markings)
	}

	if err := drawFaceText(img, l, t, fnt); err != nil {
		return nil, err
	}

	return img, nil
}

// drawTicks rings the dial with 50 marks, a heavier one on each numeral.
func drawTicks(img *image.RGBA, l Layout, t Theme) {
	for i := 0; i < 50; i++ {
		deg := float64(i) * 360.0 / 50

		inner, half := l.TickInner, 0
		if i%5 == 0 {
			inner, half = l.NumeralRadius+22, 1
		}

		drawRay(img, l.Pivot, deg, inner, l.TickOuter, half, t.Markings)
	}
}

func drawFaceText(img *image.RGBA, l Layout, t Theme, fnt *truetype.Font) error {
	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(fnt)
	ctx.SetHinting(font.HintingNone)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(t.Markings))

	ctx.SetFontSize(numeralFontSize)
	numerals := truetype.NewFace(fnt, &truetype.Options{Size: numeralFontSize, DPI: dpi, Hinting: font.HintingNone})
	defer numerals.Close()

	for i := 0; i < 10; i++ {
		sin, cos := math.Sincos(float64(i) * 36 * math.Pi / 180)
		cx := l.Pivot.X + int(math.Round(sin*float64(l.NumeralRadius)))
		cy := l.Pivot.Y - int(math.Round(cos*float64(l.NumeralRadius)))

		if err := drawCentered(ctx, numerals, strconv.Itoa(i), cx, cy); err != nil {
			return fmt.Errorf("drawing numeral %d: %w", i, err)
		}
	}

	ctx.SetFontSize(labelFontSize)
	labels := truetype.NewFace(fnt, &truetype.Options{Size: labelFontSize, DPI: dpi, Hinting: font.HintingNone})
	defer labels.Close()

	if err := drawCentered(ctx, labels, "ALT", l.Pivot.X, 204); err != nil {
		return fmt.Errorf("drawing face label: %w", err)
	}
	if err := drawCentered(ctx, labels, "IN HG", l.Pivot.X, 286); err != nil {
		return fmt.Errorf("drawing face label: %w", err)
	}

	return nil
}

// drawCentered places label with its visual center at (cx, cy).
func drawCentered(ctx *freetype.Context, face font.Face, label string, cx, cy int) error {
	width := font.MeasureString(face, label)
	metrics := face.Metrics()

	pt := freetype.Pt(cx-width.Round()/2, cy+(metrics.Ascent.Round()-metrics.Descent.Round())/2)
	_, err := ctx.DrawString(label, pt)

	return err
}

func drawNeedle(l Layout, t Theme) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, l.Size, l.Size))

	for dy := -l.NeedleLength; dy <= l.NeedleTail; dy++ {
		half := float64(l.NeedleWidth) / 2
		if dy < 0 {
			taper := 1 + float64(dy)/float64(l.NeedleLength) // 0 at the tip, 1 at the pivot
			half = 1 + taper*(half-1)
		}

		for dx := -int(half); dx <= int(half); dx++ {
			img.Set(l.Pivot.X+dx, l.Pivot.Y+dy, t.Needle)
		}
	}

	fillDisk(img, l.Pivot, l.HubRadius, t.Bezel)

	return img
}

func drawBug(l Layout, t Theme) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, l.Size, l.Size))

	span := float64(l.BugOuter - l.BugInner)
	for dy := -l.BugOuter; dy <= -l.BugInner; dy++ {
		taper := float64(-dy-l.BugInner) / span // 0 at the apex, 1 at the rim
		half := int(math.Round(taper * float64(l.BugHalf)))

		for dx := -half; dx <= half; dx++ {
			img.Set(l.Pivot.X+dx, l.Pivot.Y+dy, t.Bug)
		}
	}

	return img
}

// drawStrip renders the digits 0..9 stacked vertically, one per cell.
func drawStrip(cell image.Point, t Theme, fnt *truetype.Font, size float64) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, cell.X, 10*cell.Y))
	fillRect(img, img.Bounds(), t.WindowFill)

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(fnt)
	ctx.SetFontSize(size)
	ctx.SetHinting(font.HintingNone)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(t.DigitInk))

	face := truetype.NewFace(fnt, &truetype.Options{Size: size, DPI: dpi, Hinting: font.HintingNone})
	defer face.Close()

	for d := 0; d <= 9; d++ {
		if err := drawCentered(ctx, face, strconv.Itoa(d), cell.X/2, d*cell.Y+cell.Y/2); err != nil {
			return nil, fmt.Errorf("drawing strip digit %d: %w", d, err)
		}
	}

	return img, nil
}

// Pixel helpers. The shapes on a dial are rings, rays and spans; sampling
// them directly keeps the synthesis free of a vector dependency.

func fillRect(img *image.RGBA, r image.Rectangle, col color.Color) {
	draw.Draw(img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func fillDisk(img *image.RGBA, c image.Point, r int, col color.Color) {
	fillRing(img, c, 0, r, col)
}

func fillRing(img *image.RGBA, c image.Point, inner, outer int, col color.Color) {
	in2, out2 := inner*inner, outer*outer

	for y := -outer; y <= outer; y++ {
		for x := -outer; x <= outer; x++ {
			d2 := x*x + y*y
			if d2 >= in2 && d2 <= out2 {
				img.Set(c.X+x, c.Y+y, col)
			}
		}
	}
}

// drawRay walks the radius from inner to outer at deg, painting a square
// of half-width half around every step.
func drawRay(img *image.RGBA, c image.Point, deg float64, inner, outer, half int, col color.Color) {
	sin, cos := math.Sincos(deg * math.Pi / 180)

	for r := inner; r <= outer; r++ {
		x := c.X + int(math.Round(sin*float64(r)))
		y := c.Y - int(math.Round(cos*float64(r)))

		for dx := -half; dx <= half; dx++ {
			for dy := -half; dy <= half; dy++ {
				img.Set(x+dx, y+dy, col)
			}
		}
	}
}

// punchWindow clears a drum opening to transparent and frames it.
func punchWindow(img *image.RGBA, w image.Rectangle, frame color.Color) {
	draw.Draw(img, w, image.Transparent, image.Point{}, draw.Src)
	strokeRect(img, w, 2, frame)
}

// strokeRect paints a width-wide band around the outside of r.
func strokeRect(img *image.RGBA, r image.Rectangle, width int, col color.Color) {
	outer := r.Inset(-width)

	fillRect(img, image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, r.Min.Y), col)
	fillRect(img, image.Rect(outer.Min.X, r.Max.Y, outer.Max.X, outer.Max.Y), col)
	fillRect(img, image.Rect(outer.Min.X, r.Min.Y, r.Min.X, r.Max.Y), col)
	fillRect(img, image.Rect(r.Max.X, r.Min.Y, outer.Max.X, r.Max.Y), col)
}
