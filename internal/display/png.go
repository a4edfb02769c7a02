package display

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGWriter flushes frames into a single PNG file, replacing it with a
// rename on every cycle so a concurrent reader only ever sees a complete
// frame. It is the development and headless-diagnostics sink.
type PNGWriter struct {
	path   string
	tmp    string
	bounds image.Rectangle
}

// NewPNGWriter prepares a writer publishing frames of the given bounds to
// path. The target directory must already exist.
func NewPNGWriter(path string, bounds image.Rectangle) (*PNGWriter, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("frame output directory: %w", err)
	}

	return &PNGWriter{
		path:   path,
		tmp:    filepath.Join(dir, "."+filepath.Base(path)+".tmp"),
		bounds: bounds,
	}, nil
}

func (w *PNGWriter) Bounds() image.Rectangle {
	return w.bounds
}

func (w *PNGWriter) Flush(frame *image.RGBA) error {
	if frame.Bounds() != w.bounds {
		return fmt.Errorf("frame is %v, device wants %v", frame.Bounds(), w.bounds)
	}

	f, err := os.Create(w.tmp)
	if err != nil {
		return fmt.Errorf("creating frame file: %w", err)
	}

	if err = png.Encode(f, frame); err != nil {
		f.Close()
		os.Remove(w.tmp)
		return fmt.Errorf("encoding frame: %w", err)
	}
	if err = f.Close(); err != nil {
		os.Remove(w.tmp)
		return fmt.Errorf("closing frame file: %w", err)
	}

	if err = os.Rename(w.tmp, w.path); err != nil {
		os.Remove(w.tmp)
		return fmt.Errorf("publishing frame: %w", err)
	}

	return nil
}

func (w *PNGWriter) Close() error {
	return nil
}
