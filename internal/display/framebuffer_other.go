//go:build !linux

package display

import (
	"errors"
	"image"
)

var errFramebufferUnsupported = errors.New("framebuffer output requires linux")

// Framebuffer output needs the fbdev interface; on other platforms the
// PNG sink is the way to run the instrument.
type Framebuffer struct{}

func OpenFramebuffer(cfg FramebufferConfig) (*Framebuffer, error) {
	return nil, errFramebufferUnsupported
}

func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rectangle{}
}

func (fb *Framebuffer) Flush(frame *image.RGBA) error {
	return errFramebufferUnsupported
}

func (fb *Framebuffer) Close() error {
	return nil
}
