// Package gauge turns display states into finished altimeter frames.
package gauge

import (
	"github.com/roman-kulish/sim-altimeter/internal/instrument"
)

// Digit returns the p-th decimal digit of n, counting from 1 at the ones
// place. Positions beyond the width of n read 0, so short numbers pad with
// leading zeros for free.
func Digit(n, p int) int {
	for i := 1; i < p; i++ {
		n /= 10
	}

	return n % 10
}

// NeedleAngle maps altitude onto the needle, one revolution per thousand
// feet. Only the hundreds and tens digits take part, so the angle repeats
// identically in every thousand-foot band and never exceeds the dial.
func NeedleAngle(altitude int) float64 {
	value := Digit(altitude, 3)*100 + Digit(altitude, 2)*10

	return instrument.LinearMap(float64(value), 0, 999, 0, 359)
}
