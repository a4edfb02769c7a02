package capture

import "time"

// SessionData is one instrument run.
type SessionData struct {
	ID        int64
	StartTime time.Time
	Aircraft  string  // first aircraft title seen, empty until one is known
	Endpoint  string  // bridge endpoint the run polled
	Config    *string // instrument configuration snapshot, JSON
}

// Frame is one display cycle as recorded. PressureCode carries whatever the
// drums showed, failure codes included; Failure names the poll failure for
// querying without decoding codes.
type Frame struct {
	SessionID    int64
	Timestamp    time.Time
	Altitude     int
	PressureCode int
	BugAngle     int
	Kohlsman     float64 // raw pressure reading, 0 on a failed cycle
	BugRaw       float64 // raw bug value, 0 on a failed cycle
	Failure      string  // failure kind, empty for a clean cycle
}
