package cmd

import (
	"github.com/sirupsen/logrus"
)

// newLogger returns the shared logger, raised to DebugLevel when verbose is set.
func newLogger(verbose bool) *logrus.Logger {
	if verbose {
		Logger.SetLevel(logrus.DebugLevel)
	}

	return Logger
}
