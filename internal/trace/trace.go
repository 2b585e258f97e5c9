// Package trace builds the logger used for the verbose bundling trace.
//
// Every pipeline stage accepts a *log.Logger; a nil logger is replaced by a
// discarding one so callers never have to guard their trace calls.
package trace

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w. Trace records are emitted at debug
// level, so they only show up when verbose is set.
func New(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "dts-bundle",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// Or returns l, or a logger that drops everything when l is nil.
func Or(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	logger := log.New(io.Discard)
	logger.SetLevel(log.FatalLevel)
	return logger
}

// Section logs a section header in the same shape for every stage.
func Section(l *log.Logger, name string) {
	l.Debug("### " + name + " ###")
}
