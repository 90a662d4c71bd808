package cmd

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newLogger creates a logger writing to w. Verbose enables debug level,
// otherwise only warnings and errors are shown so diagnostics do not mix
// with the rendered logs.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}
