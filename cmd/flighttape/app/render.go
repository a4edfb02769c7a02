package app

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/roman-kulish/sim-altimeter/internal/capture"
)

const (
	dpi            = 72.0
	fontSize       = 12.0
	tickMarkLength = 5
	pixelsPerLabel = 150.0

	defaultTraceWidth = 480

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 40
	defaultRightBorder  = 40

	failureBandWidth = 6

	defaultTimeFormat     = "15:04:05"
	defaultDatetimeFormat = time.DateTime
)

// BorderConfig defines the white space around the altitude trace
type BorderConfig struct {
	Top    int // Space for the altitude scale
	Left   int // Space for the time scale
	Bottom int // Space for the information bar
	Right  int // Right padding; the failure band lives here
}

// RenderConfig holds the tape visualization options
type RenderConfig struct {
	TimeFormat     string         // Format string for time scale labels
	DatetimeFormat string         // Format string for the info bar time range
	Location       *time.Location // Timezone for time display

	FontSize   float64
	TraceWidth int // altitude axis width in pixels

	Borders BorderConfig
}

// TapeRenderer draws a captured session as a flight tape: time runs down
// the image, one row per frame, with the altitude trace across it.
type TapeRenderer struct {
	config RenderConfig

	context  *freetype.Context
	fontFace font.Face
}

// NewTapeRenderer creates a tape renderer with the given configuration
func NewTapeRenderer(config RenderConfig) (*TapeRenderer, error) {
	// Set defaults for zero values
	if config.TimeFormat == "" {
		config.TimeFormat = defaultTimeFormat
	}
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.TraceWidth == 0 {
		config.TraceWidth = defaultTraceWidth
	}
	if config.Borders.Top == 0 {
		config.Borders.Top = defaultTopBorder
	}
	if config.Borders.Left == 0 {
		config.Borders.Left = defaultLeftBorder
	}
	if config.Borders.Bottom == 0 {
		config.Borders.Bottom = defaultBottomBorder
	}
	if config.Borders.Right == 0 {
		config.Borders.Right = defaultRightBorder
	}

	parsedFont, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &TapeRenderer{
		config:  config,
		context: ctx,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (r *TapeRenderer) Close() error {
	if r.fontFace != nil {
		return r.fontFace.Close()
	}
	return nil
}

// Render creates the tape image with annotations
func (r *TapeRenderer) Render(series *TapeSeries, session *capture.SessionData) (*image.RGBA, error) {
	if series.Count == 0 {
		return nil, errors.New("series has no frames to render")
	}

	fullWidth := r.config.TraceWidth + r.config.Borders.Left + r.config.Borders.Right
	fullHeight := series.Count + r.config.Borders.Top + r.config.Borders.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	// Fill with white background
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// Trace area, one row per frame
	area := image.Rect(
		r.config.Borders.Left,
		r.config.Borders.Top,
		r.config.Borders.Left+r.config.TraceWidth,
		r.config.Borders.Top+series.Count,
	)

	r.context.SetClip(img.Bounds())
	r.context.SetDst(img)

	if err := r.drawAltitudeScale(img, series); err != nil {
		return nil, fmt.Errorf("drawing altitude scale: %w", err)
	}
	if err := r.drawTimeScale(img, series); err != nil {
		return nil, fmt.Errorf("drawing time scale: %w", err)
	}
	if err := r.drawInfoBar(img, series, session); err != nil {
		return nil, fmt.Errorf("drawing info bar: %w", err)
	}

	r.drawTrace(img, area, series)

	return img, nil
}

func (r *TapeRenderer) drawAltitudeScale(img *image.RGBA, series *TapeSeries) error {
	lo, hi := altitudeRange(series)
	step := niceAltitudeStep(hi-lo, r.config.TraceWidth)
	start := math.Ceil(lo/step) * step

	// Get actual font height in pixels
	metrics := r.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := r.config.Borders.Top - tickMarkLength - fontHeight/2

	for alt := start; alt <= hi; alt += step {
		// Convert altitude to x coordinate
		xRatio := (alt - lo) / (hi - lo)
		x := r.config.Borders.Left + int(xRatio*float64(r.config.TraceWidth))

		// Draw tick mark
		for y := r.config.Borders.Top - tickMarkLength; y < r.config.Borders.Top; y++ {
			img.Set(x, y, color.Black)
		}

		label := formatAltitude(alt)
		width := font.MeasureString(r.fontFace, label)
		pt := freetype.Pt(x-width.Round()/2, textY)
		if _, err := r.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing altitude label: %w", err)
		}
	}
	return nil
}

func (r *TapeRenderer) drawTimeScale(img *image.RGBA, series *TapeSeries) error {
	duration := series.TimeEnd.Sub(series.TimeStart)
	timeStep := niceTimeStep(duration)

	// Get font metrics once
	metrics := r.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	// Rows are frames, not seconds, so labels go wherever the series
	// crosses the next step boundary. A capture gap can skip several
	// boundaries at once, so advance past all of them or every row after
	// the gap gets a label until the scale catches up.
	next := series.TimeStart
	for y, point := range series.Points {
		if point.Timestamp.Before(next) {
			continue
		}
		for !next.After(point.Timestamp) {
			next = next.Add(timeStep)
		}

		imgY := y + r.config.Borders.Top

		// Draw tick mark
		for x := r.config.Borders.Left - tickMarkLength; x < r.config.Borders.Left; x++ {
			img.Set(x, imgY, color.Black)
		}

		// Center text vertically relative to the tick mark position
		textY := imgY + fontHeight/2 - metrics.Descent.Round()
		label := point.Timestamp.In(r.config.Location).Format(r.config.TimeFormat)
		if _, err := r.context.DrawString(label, freetype.Pt(10, textY)); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}
	return nil
}

func (r *TapeRenderer) drawInfoBar(img *image.RGBA, series *TapeSeries, session *capture.SessionData) error {
	var sb strings.Builder

	aircraft := session.Aircraft
	if aircraft == "" {
		aircraft = "unknown aircraft"
	}
	sb.WriteString(aircraft)
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Time: %s - %s",
		series.TimeStart.In(r.config.Location).Format(r.config.DatetimeFormat),
		series.TimeEnd.In(r.config.Location).Format(r.config.DatetimeFormat)))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("%s frames", humanize.Comma(int64(series.Count))))
	if series.Failures > 0 {
		sb.WriteString(fmt.Sprintf(" (%s failed)", humanize.Comma(int64(series.Failures))))
	}

	// Center text vertically in the bottom border
	metrics := r.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (r.config.Borders.Bottom-fontHeight)/2 - metrics.Descent.Round()

	pt := freetype.Pt(r.config.Borders.Left, textY)
	if _, err := r.context.DrawString(sb.String(), pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}

	return nil
}

// drawTrace paints one row per frame: the altitude mark, a faint guide on
// rows without a reading, and the failure band on the right edge.
func (r *TapeRenderer) drawTrace(img *image.RGBA, area image.Rectangle, series *TapeSeries) {
	lo, hi := altitudeRange(series)

	traceColor := color.RGBA{R: 0x1f, G: 0x4f, B: 0x9f, A: 0xff}
	missingColor := color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
	failureColor := color.RGBA{R: 0xc0, G: 0x20, B: 0x20, A: 0xff}

	for y, point := range series.Points {
		imgY := area.Min.Y + y

		if point.Altitude != nil {
			xRatio := (float64(*point.Altitude) - lo) / (hi - lo)
			x := area.Min.X + int(xRatio*float64(area.Dx()-1))
			for dx := -1; dx <= 1; dx++ {
				img.Set(x+dx, imgY, traceColor)
			}
		} else {
			for x := area.Min.X; x < area.Max.X; x += 4 {
				img.Set(x, imgY, missingColor)
			}
		}

		if point.Failed {
			for x := area.Max.X + 2; x < area.Max.X+2+failureBandWidth; x++ {
				img.Set(x, imgY, failureColor)
			}
		}
	}
}

// Helper functions

// altitudeRange widens the observed range so a flat or empty trace still
// has a drawable scale.
func altitudeRange(series *TapeSeries) (lo, hi float64) {
	if series.AltitudeMin > series.AltitudeMax {
		return 0, 1000
	}

	lo, hi = float64(series.AltitudeMin), float64(series.AltitudeMax)
	if hi-lo < 100 {
		mid := (hi + lo) / 2
		lo, hi = mid-50, mid+50
		if lo < 0 {
			hi -= lo
			lo = 0
		}
	}
	return lo, hi
}

func niceAltitudeStep(span float64, width int) float64 {
	// Standard step sizes in feet
	steps := []float64{
		10,
		50,
		100,
		500,
		1_000,
		5_000,
		10_000,
		25_000,
	}

	desiredSteps := float64(width) / pixelsPerLabel
	targetStep := span / desiredSteps

	// Find the closest standard step size
	for _, step := range steps {
		if step >= targetStep {
			// If this step would give us at least 2 points
			if span/step >= 2 {
				return step
			}
			break
		}
	}

	// If we can't find a suitable step or would get too few points,
	// return half the span to show at least the midpoint
	return span / 2
}

func formatAltitude(alt float64) string {
	return humanize.Comma(int64(math.Round(alt))) + " ft"
}

func niceTimeStep(duration time.Duration) time.Duration {
	roughStep := duration.Seconds() / 8 // Aim for about 8 time labels

	// Nice time intervals in seconds
	niceIntervals := []float64{
		10,   // 10 seconds
		30,   // 30 seconds
		60,   // 1 minute
		300,  // 5 minutes
		600,  // 10 minutes
		900,  // 15 minutes
		1800, // 30 minutes
		3600, // 1 hour
	}

	// Find the first interval larger than our rough step
	for _, interval := range niceIntervals {
		if roughStep <= interval {
			return time.Duration(interval) * time.Second
		}
	}

	return 2 * time.Hour // Default for very long sessions
}
