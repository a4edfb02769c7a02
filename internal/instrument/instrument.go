// Package instrument reduces bridge readings to the three quantities a
// round altimeter face displays.
package instrument

import (
	"github.com/roman-kulish/sim-altimeter/internal/bridge"
)

const (
	// MaxAltitude is the highest altitude the drums can show, in feet
	MaxAltitude = 99999

	// MaxPressureCode is the highest value the pressure drums can show
	MaxPressureCode = 9999

	// MaxBugAngle is the last whole degree before the bug wraps
	MaxBugAngle = 359
)

// Failure codes shown on the pressure drums in place of a reading. The
// pressure window doubles as the status display, so each poll failure has a
// four-digit code a pilot can read off the face.
const (
	CodeEmptyTitle  = 3333 // aircraft loaded but reports a blank title
	CodeBadPayload  = 4444 // bridge reply did not decode
	CodeNoAircraft  = 5555 // no aircraft loaded in the simulator
	CodeNoTelemetry = 6666 // bridge returned no numeric values
	CodeUnreachable = 7777 // bridge unreachable or simulator not running
	CodeBadBugValue = 8888 // altitude bug outside the mappable range
	CodeNoNetwork   = 9999 // host has no active network interface
)

// State is what the gauge shows for one cycle. It is rebuilt from scratch
// every poll and holds nothing across cycles.
type State struct {
	Altitude     int // feet, 0..99999
	PressureCode int // inHg hundredths or a failure code, 0..9999
	BugAngle     int // degrees clockwise from the dial top, 0..359
}

// IsSentinel reports whether code is a failure code rather than a pressure
// reading.
func IsSentinel(code int) bool {
	switch code {
	case CodeEmptyTitle, CodeBadPayload, CodeNoAircraft, CodeNoTelemetry,
		CodeUnreachable, CodeBadBugValue, CodeNoNetwork:
		return true
	}

	return false
}

// SentinelFor maps a poll failure onto its pressure-drum code.
func SentinelFor(kind bridge.FailureKind) int {
	switch kind {
	case bridge.EmptyTitle:
		return CodeEmptyTitle
	case bridge.BadPayload:
		return CodeBadPayload
	case bridge.NoAircraft:
		return CodeNoAircraft
	case bridge.NoTelemetry:
		return CodeNoTelemetry
	case bridge.Unreachable:
		return CodeUnreachable
	case bridge.NoNetwork:
		return CodeNoNetwork
	default:
		// anything unclassified reads as a bridge outage
		return CodeUnreachable
	}
}
