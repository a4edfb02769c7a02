package app

import (
	"time"

	"github.com/roman-kulish/sim-altimeter/internal/bridge"
	"github.com/roman-kulish/sim-altimeter/internal/capture"
	"github.com/roman-kulish/sim-altimeter/internal/instrument"
)

// TapePoint is one display cycle on the tape. Altitude is nil when the
// cycle had no usable reading: hard poll failures zero the display, so the
// recorded value says nothing about the aircraft.
type TapePoint struct {
	Timestamp time.Time
	Altitude  *int
	Failed    bool // a sentinel code was on the pressure drums
}

// TapeSeries accumulates the frames of one session into the ranges the
// renderer needs. One frame becomes one pixel row.
type TapeSeries struct {
	Count                    int
	TimeStart, TimeEnd       time.Time
	AltitudeMin, AltitudeMax int
	Failures                 int
	Points                   []TapePoint
}

func NewTapeSeries() *TapeSeries {
	return &TapeSeries{
		AltitudeMin: instrument.MaxAltitude,
		AltitudeMax: 0,
	}
}

// Update folds one captured frame into the series.
func (s *TapeSeries) Update(frame capture.Frame) {
	s.Count++

	if s.TimeStart.IsZero() || s.TimeStart.After(frame.Timestamp) {
		s.TimeStart = frame.Timestamp
	}
	if s.TimeEnd.IsZero() || s.TimeEnd.Before(frame.Timestamp) {
		s.TimeEnd = frame.Timestamp
	}

	point := TapePoint{
		Timestamp: frame.Timestamp,
		Failed:    instrument.IsSentinel(frame.PressureCode),
	}
	if point.Failed {
		s.Failures++
	}
	if hasAltitude(frame) {
		altitude := frame.Altitude
		point.Altitude = &altitude
		s.AltitudeMin = min(s.AltitudeMin, altitude)
		s.AltitudeMax = max(s.AltitudeMax, altitude)
	}

	s.Points = append(s.Points, point)
}

// hasAltitude reports whether the cycle carried a real reading. Soft
// failures (blank title, bad bug value) keep the altitude that was
// measured; everything else failed before an altitude existed.
func hasAltitude(frame capture.Frame) bool {
	switch bridge.FailureKind(frame.Failure) {
	case "", bridge.EmptyTitle:
		return true
	default:
		return false
	}
}
