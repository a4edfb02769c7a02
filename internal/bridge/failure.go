package bridge

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a poll produced no usable reading.
type FailureKind string

const (
	NoNetwork   FailureKind = "no-network"   // no active network interface, request not attempted
	Unreachable FailureKind = "unreachable"  // transport error or non-2xx status from the bridge
	BadPayload  FailureKind = "bad-payload"  // response body did not decode
	NoAircraft  FailureKind = "no-aircraft"  // string variable list empty or absent
	NoTelemetry FailureKind = "no-telemetry" // numeric variable list empty or absent
	EmptyTitle  FailureKind = "empty-title"  // aircraft title blank; reading is still usable
)

// Failure wraps a poll error with its classification. All errors returned
// by Client.Poll are of this type.
type Failure struct {
	Kind FailureKind
	Err  error // underlying cause, may be nil
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}

	return fmt.Sprintf("%s: %s", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf extracts the classification from an error chain. It returns the
// empty kind when err is nil or carries no Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}

	return ""
}
