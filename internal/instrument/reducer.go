package instrument

import (
	"math"
	"strings"

	"github.com/roman-kulish/sim-altimeter/internal/bridge"
)

const bugRawMax = 999 // highest raw bug value that maps onto the dial

// LinearMap projects value from [inLo, inHi] onto [outLo, outHi]. It does
// not clamp: inputs outside the source range land outside the target range,
// which is how callers detect them.
func LinearMap(value, inLo, inHi, outLo, outHi float64) float64 {
	return outLo + (value-inLo)*(outHi-outLo)/(inHi-inLo)
}

// AdjustFunc tweaks the reduced state for one aircraft. It receives the
// state after the standard reduction and the raw sample it came from.
type AdjustFunc func(s State, sample *bridge.Sample) State

type profile struct {
	match  string
	adjust AdjustFunc
}

// WithProfile registers an adjustment applied when the aircraft title starts
// with match. Profiles run in registration order and the first match wins;
// an empty match string matches every aircraft.
func WithProfile(match string, adjust AdjustFunc) func(r *Reducer) {
	return func(r *Reducer) {
		r.profiles = append(r.profiles, profile{match: match, adjust: adjust})
	}
}

// Reducer turns one poll result into one display State. Reduce is pure:
// the same sample and error always produce the same State.
type Reducer struct {
	profiles []profile
}

func NewReducer(options ...func(r *Reducer)) *Reducer {
	var r Reducer

	for _, option := range options {
		option(&r)
	}

	return &r
}

// Reduce maps a poll result onto the face. Hard failures zero the altitude
// and bug and put the failure code on the pressure drums. A blank aircraft
// title keeps the computed altitude and bug but shows CodeEmptyTitle. An
// altitude bug outside the mappable range zeroes the bug angle and shows
// CodeBadBugValue over whatever the pressure drums would have read.
func (r *Reducer) Reduce(sample *bridge.Sample, pollErr error) State {
	kind := bridge.KindOf(pollErr)
	if sample == nil || (pollErr != nil && kind != bridge.EmptyTitle) {
		return State{PressureCode: SentinelFor(kind)}
	}

	s := State{
		Altitude:     int(math.Round(sample.Altitude)),
		PressureCode: int(math.Round(sample.Kohlsman * 100)),
	}

	if kind == bridge.EmptyTitle {
		s.PressureCode = CodeEmptyTitle
	}

	// The bug is an integer reading, so round the wire value first; a
	// fractional 999.4 is the valid raw 999, not an overshoot. The mapped
	// angle is then validated unrounded so every raw outside [0, 999]
	// trips the guard; 999 maps exactly onto the last degree.
	angle := LinearMap(math.Round(sample.Bug), 0, bugRawMax, 0, MaxBugAngle)
	if angle < 0 || angle > MaxBugAngle {
		s.BugAngle = 0
		s.PressureCode = CodeBadBugValue
	} else {
		s.BugAngle = int(math.Round(angle))
	}

	for _, p := range r.profiles {
		if strings.HasPrefix(sample.Title, p.match) {
			s = p.adjust(s, sample)
			break
		}
	}

	return normalize(s)
}

// normalize clamps the state into the ranges the drums and bug can show.
func normalize(s State) State {
	s.Altitude = clamp(s.Altitude, 0, MaxAltitude)
	s.PressureCode = clamp(s.PressureCode, 0, MaxPressureCode)
	s.BugAngle = clamp(s.BugAngle, 0, MaxBugAngle)

	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
