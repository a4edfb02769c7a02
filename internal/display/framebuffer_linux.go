//go:build linux

package display

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/sys/unix"
)

// Framebuffer maps a fbdev node once and packs each frame straight into
// the mapping.
type Framebuffer struct {
	file *os.File
	mem  []byte
	cfg  FramebufferConfig
	row  []byte // packed-row scratch
}

func OpenFramebuffer(cfg FramebufferConfig) (*Framebuffer, error) {
	if err := cfg.Format.Validate(); err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("framebuffer geometry %dx%d is not drawable", cfg.Width, cfg.Height)
	}

	rowBytes := cfg.Width * cfg.Format.BytesPerPixel()
	if cfg.Stride == 0 {
		cfg.Stride = rowBytes
	}
	if cfg.Stride < rowBytes {
		return nil, fmt.Errorf("stride %d below %d bytes needed for %d %s pixels",
			cfg.Stride, rowBytes, cfg.Width, cfg.Format)
	}

	f, err := os.OpenFile(cfg.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening framebuffer: %w", err)
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, cfg.Stride*cfg.Height, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mapping framebuffer: %w", err)
	}

	return &Framebuffer{
		file: f,
		mem:  mem,
		cfg:  cfg,
		row:  make([]byte, rowBytes),
	}, nil
}

func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.cfg.Width, fb.cfg.Height)
}

// Flush packs the frame into the mapping. Each row is assembled in scratch
// first so it lands in device memory as a single copy.
func (fb *Framebuffer) Flush(frame *image.RGBA) error {
	if frame.Bounds() != fb.Bounds() {
		return fmt.Errorf("frame is %v, framebuffer wants %v", frame.Bounds(), fb.Bounds())
	}

	for y := 0; y < fb.cfg.Height; y++ {
		src := frame.Pix[y*frame.Stride : y*frame.Stride+4*fb.cfg.Width]
		fb.cfg.Format.PackRow(fb.row, src)
		copy(fb.mem[y*fb.cfg.Stride:], fb.row)
	}

	return nil
}

func (fb *Framebuffer) Close() error {
	var err error
	if fb.mem != nil {
		err = unix.Munmap(fb.mem)
		fb.mem = nil
	}

	if cerr := fb.file.Close(); cerr != nil && err == nil {
		err = cerr
	}

	return err
}
