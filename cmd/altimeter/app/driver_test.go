package app

import (
	"context"
	"image"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/roman-kulish/sim-altimeter/internal/bridge"
	"github.com/roman-kulish/sim-altimeter/internal/gauge"
	"github.com/roman-kulish/sim-altimeter/internal/instrument"
)

type stubPoller struct {
	sample *bridge.Sample
	err    error
	polls  int
}

func (p *stubPoller) Poll(ctx context.Context) (*bridge.Sample, error) {
	p.polls++
	return p.sample, p.err
}

type stubDevice struct {
	bounds   image.Rectangle
	flushErr error

	flushes int
	last    *image.RGBA
	closed  bool
}

func (d *stubDevice) Bounds() image.Rectangle { return d.bounds }

func (d *stubDevice) Flush(frame *image.RGBA) error {
	d.flushes++
	d.last = frame
	return d.flushErr
}

func (d *stubDevice) Close() error {
	d.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDriver(t *testing.T, poller bridge.Poller) (*driver, *stubDevice) {
	t.Helper()

	layout := gauge.DefaultLayout()
	theme, err := gauge.ParseTheme(gauge.DefaultTheme)
	if err != nil {
		t.Fatalf("ParseTheme() error = %v", err)
	}
	assets, err := gauge.Load("", layout, theme)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	device := &stubDevice{bounds: image.Rect(0, 0, layout.Size, layout.Size)}
	return &driver{
		poller:     poller,
		reducer:    instrument.NewReducer(),
		compositor: gauge.NewCompositor(assets, layout, theme),
		device:     device,
		logger:     discardLogger(),
		period:     10 * time.Millisecond,
	}, device
}

func TestCycleFlushesFrame(t *testing.T) {
	poller := &stubPoller{sample: &bridge.Sample{
		Timestamp: time.Now(),
		Altitude:  5280.4,
		Kohlsman:  29.921,
		Bug:       120,
		Title:     "Cessna 152",
	}}
	d, device := newTestDriver(t, poller)

	d.cycle(context.Background())

	if poller.polls != 1 {
		t.Errorf("polls = %d, want 1", poller.polls)
	}
	if device.flushes != 1 {
		t.Fatalf("flushes = %d, want 1", device.flushes)
	}
	if device.last == nil || device.last.Bounds() != device.bounds {
		t.Errorf("flushed frame bounds = %v, want %v", device.last.Bounds(), device.bounds)
	}
}

func TestCycleRendersFailures(t *testing.T) {
	poller := &stubPoller{err: &bridge.Failure{Kind: bridge.Unreachable}}
	d, device := newTestDriver(t, poller)

	d.cycle(context.Background())

	if device.flushes != 1 {
		t.Fatalf("flushes = %d, want 1: failures must still render", device.flushes)
	}
}

func TestCycleSurvivesFlushError(t *testing.T) {
	poller := &stubPoller{sample: &bridge.Sample{Title: "Cessna 152"}}
	d, device := newTestDriver(t, poller)
	device.flushErr = io.ErrClosedPipe

	d.cycle(context.Background())
	d.cycle(context.Background())

	if device.flushes != 2 {
		t.Errorf("flushes = %d, want 2: the loop keeps going", device.flushes)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	poller := &stubPoller{sample: &bridge.Sample{Title: "Cessna 152"}}
	d, device := newTestDriver(t, poller)

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(30*time.Millisecond, cancel)
	defer timer.Stop()

	if err := d.run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if device.flushes < 1 {
		t.Errorf("flushes = %d, want at least 1", device.flushes)
	}
	if poller.polls != device.flushes {
		t.Errorf("polls = %d, flushes = %d, want one flush per poll", poller.polls, device.flushes)
	}
}
