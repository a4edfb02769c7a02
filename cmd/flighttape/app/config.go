package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

type ImageFormat string

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

// Config selects the captured session to render and where the tape goes
type Config struct {
	DBPath     string
	SessionID  int64
	OutputFile string
	Format     ImageFormat

	From *time.Time
	To   *time.Time

	Location   *time.Location
	TraceWidth int
}

func NewConfig() *Config {
	return &Config{
		Format:     ImagePNG,
		Location:   time.Local,
		TraceWidth: defaultTraceWidth,
	}
}

// NewConfigFromCLI builds the configuration from command line flags
func NewConfigFromCLI() (*Config, error) {
	return newConfigFromFlags(flag.CommandLine, os.Args[1:])
}

func newConfigFromFlags(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	var imageFormat, from, to, timezone string
	fs.StringVar(&c.DBPath, "db", "", "Path to the capture database file")
	fs.Int64Var(&c.SessionID, "s", 1, "Session ID")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	fs.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	fs.StringVar(&from, "from", "", "Render frames at or after this time (2006-01-02 15:04:05)")
	fs.StringVar(&to, "to", "", "Render frames at or before this time (2006-01-02 15:04:05)")
	fs.StringVar(&timezone, "tz", "", "Timezone for the time scale (default: local)")
	fs.IntVar(&c.TraceWidth, "width", defaultTraceWidth, "Altitude trace width in pixels")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	imageFormat = strings.ToLower(imageFormat)

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if c.TraceWidth < 100 {
		err = fmt.Errorf("trace width %d is too narrow to annotate", c.TraceWidth)
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	}

	if err == nil && timezone != "" {
		var loc *time.Location
		if loc, err = time.LoadLocation(timezone); err == nil {
			c.Location = loc
		}
	}
	if err == nil && from != "" {
		var ts time.Time
		if ts, err = time.ParseInLocation(time.DateTime, from, c.Location); err == nil {
			c.From = &ts
		}
	}
	if err == nil && to != "" {
		var ts time.Time
		if ts, err = time.ParseInLocation(time.DateTime, to, c.Location); err == nil {
			c.To = &ts
		}
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
