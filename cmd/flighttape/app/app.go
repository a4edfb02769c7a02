package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/roman-kulish/sim-altimeter/internal/capture"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	reader, err := capture.NewReader(config.DBPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	return renderTape(reader, config, logger)
}

func renderTape(reader *capture.Reader, config *Config, logger *slog.Logger) error {
	session, err := reader.Session(config.SessionID)
	if err != nil {
		return fmt.Errorf("loading session %d: %w", config.SessionID, err)
	}

	var opts []func(*capture.FrameIterator)
	var filters []any
	switch {
	case config.From != nil && config.To != nil:
		opts = append(opts, capture.WithTimeRange(*config.From, *config.To))

		filters = append(filters,
			slog.String("from", config.From.Format(time.DateTime)),
			slog.String("to", config.To.Format(time.DateTime)))

	case config.From != nil:
		opts = append(opts, capture.WithStartTime(*config.From))
		filters = append(filters, slog.String("from", config.From.Format(time.DateTime)))

	case config.To != nil:
		opts = append(opts, capture.WithEndTime(*config.To))
		filters = append(filters, slog.String("to", config.To.Format(time.DateTime)))
	}

	logger.Info("iterator configuration", filters...)

	iter, err := reader.Frames(config.SessionID, opts...)
	if err != nil {
		return err
	}
	defer iter.Close()

	series := NewTapeSeries()
	for iter.Next() {
		series.Update(iter.Current())
	}
	if err = iter.Error(); err != nil {
		return err
	}
	if series.Count == 0 {
		return fmt.Errorf("session %d has no frames in the selected range", config.SessionID)
	}

	logger.Info("finished reading frames",
		slog.Group("stats",
			slog.Int("frames", series.Count),
			slog.Int("failures", series.Failures),
			slog.String("from", series.TimeStart.In(config.Location).Format(time.DateTime)),
			slog.String("to", series.TimeEnd.In(config.Location).Format(time.DateTime)),
		))

	renderer, err := NewTapeRenderer(RenderConfig{
		Location:   config.Location,
		TraceWidth: config.TraceWidth,
	})
	if err != nil {
		return fmt.Errorf("creating tape renderer: %w", err)
	}
	defer renderer.Close()

	logger.Info("rendering tape",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("rows", series.Count),
			slog.Int("width", config.TraceWidth),
		))

	img, err := renderer.Render(series, session)
	if err != nil {
		return fmt.Errorf("rendering tape: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}

	switch config.Format {
	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	default:
		err = png.Encode(out, img)
	}
	if err != nil {
		out.Close()
		return fmt.Errorf("encoding tape: %w", err)
	}

	return out.Close()
}
