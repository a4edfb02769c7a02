package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/roman-kulish/sim-altimeter/internal/bridge"
	"github.com/roman-kulish/sim-altimeter/internal/capture"
	"github.com/roman-kulish/sim-altimeter/internal/instrument"
)

// frameBatchSize is the number of cycles buffered before they are written
// in one transaction. 25 cycles is five seconds at the stock period.
const frameBatchSize = 25

// recorder appends display cycles to a capture session. Storage errors are
// logged and dropped: capture is diagnostics, the instrument keeps running
// without it.
type recorder struct {
	store     *capture.Store
	sessionID int64
	logger    *slog.Logger

	pending     []capture.Frame
	aircraftSet bool
}

// createRecorder opens the capture store and starts a session carrying the
// bridge endpoint and the full configuration snapshot.
func createRecorder(config *Config, logger *slog.Logger) (*recorder, error) {
	store, err := capture.NewStore(config.Capture.Path)
	if err != nil {
		return nil, err
	}

	sessionID, err := store.CreateSession(config.Bridge.Endpoint, config)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating capture session: %w", err)
	}

	return &recorder{
		store:     store,
		sessionID: sessionID,
		logger:    logger,
		pending:   make([]capture.Frame, 0, frameBatchSize),
	}, nil
}

// Record buffers one cycle. The aircraft title attaches to the session the
// first time a sample carries one.
func (r *recorder) Record(ts time.Time, state instrument.State, sample *bridge.Sample, kind bridge.FailureKind) {
	if !r.aircraftSet && sample != nil && sample.Title != "" {
		if err := r.store.SetSessionAircraft(r.sessionID, sample.Title); err != nil {
			r.logger.Error(fmt.Sprintf("recording aircraft title: %s", err))
		} else {
			r.aircraftSet = true
		}
	}

	frame := capture.Frame{
		SessionID:    r.sessionID,
		Timestamp:    ts,
		Altitude:     state.Altitude,
		PressureCode: state.PressureCode,
		BugAngle:     state.BugAngle,
		Failure:      string(kind),
	}
	if sample != nil {
		frame.Kohlsman = sample.Kohlsman
		frame.BugRaw = sample.Bug
	}

	r.pending = append(r.pending, frame)
	if len(r.pending) >= frameBatchSize {
		r.flush()
	}
}

func (r *recorder) flush() {
	if len(r.pending) == 0 {
		return
	}

	if err := r.store.BatchInsertFrames(r.pending); err != nil {
		r.logger.Error(fmt.Sprintf("storing frames: %s", err))
	}

	r.pending = r.pending[:0]
}

// Close writes anything still buffered and closes the store.
func (r *recorder) Close() error {
	r.flush()
	return r.store.Close()
}
