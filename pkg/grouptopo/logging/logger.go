// Package logging defines the topology's logging contract. The shape
// mirrors the teacher's pkg/mcast/definition/default_logger.go; the
// default implementation is backed by logrus instead of the bare
// standard library logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is implemented by anything that can receive the topology's
// diagnostic output. The operator, group, client and sender components
// take one through their constructors.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})

	// ToggleDebug enables or disables Debugf output, returning the new
	// value.
	ToggleDebug(enabled bool) bool
}

// logrusLogger is the default Logger, wrapping a *logrus.Logger.
type logrusLogger struct {
	*logrus.Logger
}

// NewDefaultLogger builds the default Logger, writing structured entries
// to stderr with debug-level output disabled until ToggleDebug(true).
func NewDefaultLogger() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return &logrusLogger{Logger: l}
}

func (l *logrusLogger) Debugf(format string, v ...interface{}) {
	l.Logger.Debugf(format, v...)
}

func (l *logrusLogger) Infof(format string, v ...interface{}) {
	l.Logger.Infof(format, v...)
}

func (l *logrusLogger) Warnf(format string, v ...interface{}) {
	l.Logger.Warnf(format, v...)
}

func (l *logrusLogger) Errorf(format string, v ...interface{}) {
	l.Logger.Errorf(format, v...)
}

func (l *logrusLogger) Fatalf(format string, v ...interface{}) {
	l.Logger.Fatalf(format, v...)
}

func (l *logrusLogger) ToggleDebug(enabled bool) bool {
	if enabled {
		l.Logger.SetLevel(logrus.DebugLevel)
	} else {
		l.Logger.SetLevel(logrus.InfoLevel)
	}
	return enabled
}
