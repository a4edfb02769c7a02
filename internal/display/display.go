// Package display delivers finished frames to an output device.
package display

import (
	"image"
)

// Device receives one finished frame per instrument cycle. A Flush applies
// the whole frame in one update; a partially drawn frame never reaches the
// device because the compositor only hands over complete buffers.
type Device interface {
	Bounds() image.Rectangle
	Flush(frame *image.RGBA) error
	Close() error
}

// FramebufferConfig describes the target panel. Geometry is supplied, not
// probed: mode setting and panel bring-up happen outside this process.
type FramebufferConfig struct {
	Path   string // device node, e.g. /dev/fb0
	Width  int
	Height int
	Stride int // bytes per row, 0 for tightly packed
	Format PixelFormat
}
