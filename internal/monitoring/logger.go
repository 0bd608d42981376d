// Package monitoring holds the process-wide diagnostic logger.
package monitoring

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the package-level diagnostic logger. It defaults to the logrus
// standard logger but may be replaced by SetLogger. Tests or embedding hosts
// can redirect or mute it.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the package logger. Passing nil installs a logger that
// discards everything.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		Logger = Discard()
		return
	}
	Logger = l
}

// Discard returns a logger whose output goes nowhere.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Configure sets the level and formatter of the standard logger from a
// textual level name such as "debug" or "warn".
func Configure(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	std := logrus.StandardLogger()
	std.SetLevel(lvl)
	std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}
