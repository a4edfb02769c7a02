package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roman-kulish/sim-altimeter/internal/bridge"
	"github.com/roman-kulish/sim-altimeter/internal/display"
	"github.com/roman-kulish/sim-altimeter/internal/gauge"
	"github.com/roman-kulish/sim-altimeter/internal/instrument"
)

// driver runs the fixed-period display loop: poll, reduce, compose, flush,
// record. One cycle per tick; a slow cycle delays the next tick rather
// than queueing work behind it.
type driver struct {
	poller     bridge.Poller
	reducer    *instrument.Reducer
	compositor *gauge.Compositor
	device     display.Device
	recorder   *recorder // nil when capture is disabled
	logger     *slog.Logger
	period     time.Duration

	lastKind bridge.FailureKind
}

func (d *driver) run(ctx context.Context) error {
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()

	for {
		d.cycle(ctx)

		select {
		case <-ctx.Done():
			d.logger.Info("instrument stopping")
			return nil
		case <-ticker.C:
		}
	}
}

func (d *driver) cycle(ctx context.Context) {
	started := time.Now()

	sample, pollErr := d.poller.Poll(ctx)
	d.logTransition(pollErr)

	state := d.reducer.Reduce(sample, pollErr)
	frame := d.compositor.Compose(state)

	if err := d.device.Flush(frame); err != nil {
		d.logger.Error(fmt.Sprintf("flushing display: %s", err))
	}

	if d.recorder != nil {
		d.recorder.Record(started, state, sample, bridge.KindOf(pollErr))
	}

	if elapsed := time.Since(started); elapsed > d.period {
		d.logger.Debug("cycle over budget",
			slog.Duration("elapsed", elapsed),
			slog.Duration("period", d.period))
	}
}

// logTransition reports poll failures when they start and when they clear.
// A steady failure repeats every cycle and would flood the log at full
// rate.
func (d *driver) logTransition(pollErr error) {
	kind := bridge.KindOf(pollErr)
	if kind == d.lastKind {
		return
	}

	if pollErr != nil {
		d.logger.Warn("poll failing",
			slog.String("kind", string(kind)),
			slog.String("error", pollErr.Error()))
	} else {
		d.logger.Info("telemetry restored")
	}

	d.lastKind = kind
}
