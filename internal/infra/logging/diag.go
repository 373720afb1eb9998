package logging

import (
	"io"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/lumberjack/v2"
)

const (
	diagMaxSizeMB  = 10
	diagMaxBackups = 5
	fileWriterName = "file"
)

type DiagOptions struct {
	// LogFile is the rotating diagnostic log. Empty disables file logging.
	LogFile string
	// Level is a loggo level name for the whole tree; Debug forces DEBUG.
	Level  string
	Debug  bool
	Stderr io.Writer
}

// SetupDiagnostics routes the package loggers to stderr (warnings only unless
// debugging) and to a size-rotated log file. The returned closer flushes the
// file writer.
func SetupDiagnostics(opts DiagOptions) (io.Closer, error) {
	level := loggo.INFO
	if name := strings.TrimSpace(opts.Level); name != "" {
		parsed, ok := loggo.ParseLevel(name)
		if !ok {
			return nil, errors.NotValidf("log level %q", name)
		}
		level = parsed
	}
	consoleLevel := loggo.WARNING
	if opts.Debug {
		level = loggo.DEBUG
		consoleLevel = loggo.DEBUG
	}

	if opts.Stderr != nil {
		console := loggo.NewMinimumLevelWriter(loggo.NewSimpleWriter(opts.Stderr, loggo.DefaultFormatter), consoleLevel)
		if _, err := loggo.ReplaceDefaultWriter(console); err != nil {
			return nil, errors.Annotate(err, "configure console logging")
		}
	}
	if err := loggo.ConfigureLoggers("<root>=" + level.String()); err != nil {
		return nil, errors.Trace(err)
	}

	if opts.LogFile == "" {
		return nopCloser{}, nil
	}
	file := &lumberjack.Logger{
		Filename:   opts.LogFile,
		MaxSize:    diagMaxSizeMB,
		MaxBackups: diagMaxBackups,
	}
	_, _ = loggo.RemoveWriter(fileWriterName)
	if err := loggo.RegisterWriter(fileWriterName, loggo.NewSimpleWriter(file, loggo.DefaultFormatter)); err != nil {
		return nil, errors.Annotate(err, "configure file logging")
	}
	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
