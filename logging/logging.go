package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	mu     sync.Mutex
)

// Options controls how the process-wide logger is built.
type Options struct {
	Level  logrus.Level
	Format string // "text" or "json"
	Output io.Writer
}

// Configure (re)configures the shared logger. Packages that captured the logger
// through GetLogger see the change since the pointer never moves.
func Configure(opts Options) (*logrus.Logger, error) {
	formatter, err := newFormatter(opts.Format)
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	l := GetLogger()
	mu.Lock()
	defer mu.Unlock()
	l.SetOutput(out)
	l.SetLevel(opts.Level)
	l.SetFormatter(formatter)
	return l, nil
}

// GetLogger returns the shared logger, creating it with defaults on first use.
func GetLogger() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(os.Stdout)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// NewSink returns a logger for received payloads. It always logs at Info level
// so the payload printout does not depend on log.level; format and output
// follow the same rules as Configure.
func NewSink(format string, out io.Writer) (*logrus.Logger, error) {
	formatter, err := newFormatter(format)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = os.Stdout
	}
	sink := logrus.New()
	sink.SetOutput(out)
	sink.SetFormatter(formatter)
	sink.SetLevel(logrus.InfoLevel)
	return sink, nil
}

// ParseLevel wraps logrus.ParseLevel with a friendlier error.
func ParseLevel(s string) (logrus.Level, error) {
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func newFormatter(format string) (logrus.Formatter, error) {
	switch format {
	case "", "text":
		return &logrus.TextFormatter{FullTimestamp: true}, nil
	case "json":
		return &logrus.JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
