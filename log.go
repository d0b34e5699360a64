package sift

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the package logger. Stdout carries the headers handed back to the
// MTA, so every diagnostic goes to stderr.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetLevel(logrus.WarnLevel)
}

// SetDebug turns on per-stage tracing.
func SetDebug(on bool) {
	if on {
		Log.SetLevel(logrus.DebugLevel)
	}
}
