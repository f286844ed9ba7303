// Package log provides the logger of aim commands.
package log

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv enables debug level when set to a true value. The --debug flag of
// commands overrides it.
const DebugEnv = "AIM_DEBUG"

// Debug reports whether DebugEnv holds a true value.
func Debug() bool {
	debug, err := strconv.ParseBool(os.Getenv(DebugEnv))
	return err == nil && debug
}

// Level returns the level of the debug switch.
func Level(debug bool) logrus.Level {
	if debug {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

// New returns a text logger that writes to w. Debug level is set if DebugEnv
// asks for it.
func New(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(Level(Debug()))
	return l
}

// GetLogger returns a new logger instance writing to stderr.
func GetLogger() *logrus.Logger {
	return New(os.Stderr)
}
