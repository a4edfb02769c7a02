// Package bridge polls flight simulator variables through a sim-variable
// bridge exposing Lorby-style getvars/getstringvars JSON over HTTP.
package bridge

import (
	"context"
	"errors"
	"time"
)

// Vars names the bridge expressions requested on every poll. Positions are
// fixed: the bridge answers in request order, and the instrument reads
// altitude, pressure and bug from slots 0..2 of the numeric reply.
type Vars struct {
	Altitude string // indicated altitude, feet
	Pressure string // barometric pressure setting, inHg
	Bug      string // autopilot altitude bug, raw value
	Title    string // aircraft title string
}

// DefaultVars returns the stock MSFS expressions.
func DefaultVars() Vars {
	return Vars{
		Altitude: "(A:INDICATED ALTITUDE, Feet)",
		Pressure: "(A:KOHLSMAN SETTING HG, inHg)",
		Bug:      "(A:AUTOPILOT ALTITUDE LOCK VAR, Feet)",
		Title:    "(A:TITLE, String)",
	}
}

func (v Vars) validate() error {
	if v.Altitude == "" || v.Pressure == "" || v.Bug == "" || v.Title == "" {
		return errors.New("all bridge variable expressions must be set")
	}

	return nil
}

// Sample is the decoded result of one poll. Values are raw bridge readings;
// rounding and range handling happen downstream.
type Sample struct {
	Timestamp time.Time

	Altitude float64 // indicated altitude in feet
	Kohlsman float64 // pressure setting in inHg
	Bug      float64 // altitude bug raw value

	Title string // aircraft title, may be empty
}

// Poller is the single-method view of the client the instrument loop uses.
type Poller interface {
	Poll(ctx context.Context) (*Sample, error)
}
