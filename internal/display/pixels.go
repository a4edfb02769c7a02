package display

import (
	"encoding/binary"
	"fmt"
)

// PixelFormat names the memory layouts the framebuffer sink can feed.
type PixelFormat string

const (
	// RGB565 is the default format of small SPI and DPI panels
	RGB565 PixelFormat = "rgb565"

	// XRGB8888 is the common 32bpp desktop framebuffer layout
	XRGB8888 PixelFormat = "xrgb8888"
)

var validPixelFormats = map[PixelFormat]struct{}{
	RGB565:   {},
	XRGB8888: {},
}

func (f PixelFormat) String() string {
	return string(f)
}

func (f PixelFormat) Validate() error {
	if _, ok := validPixelFormats[f]; !ok {
		return fmt.Errorf("unknown pixel format %q", string(f))
	}

	return nil
}

// BytesPerPixel returns the device storage per pixel.
func (f PixelFormat) BytesPerPixel() int {
	if f == RGB565 {
		return 2
	}

	return 4
}

// PackRow converts one row of RGBA bytes into the device format. dst must
// hold len(src)/4*BytesPerPixel() bytes. Both formats are little endian,
// matching fbdev on every target this runs on.
func (f PixelFormat) PackRow(dst []byte, src []uint8) {
	switch f {
	case RGB565:
		for i, j := 0, 0; i < len(src); i, j = i+4, j+2 {
			binary.LittleEndian.PutUint16(dst[j:], packRGB565(src[i], src[i+1], src[i+2]))
		}
	default:
		for i, j := 0, 0; i < len(src); i, j = i+4, j+4 {
			dst[j] = src[i+2]
			dst[j+1] = src[i+1]
			dst[j+2] = src[i]
			dst[j+3] = 0xff
		}
	}
}

func packRGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}
