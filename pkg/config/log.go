package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NamedLogger creates a named package logger writing to stderr.
func NamedLogger(name string, verbose bool) *logrus.Entry {
	logger := logrus.New()
	logger.Out = os.Stderr
	logger.Formatter = &logrus.TextFormatter{ForceColors: true}
	if verbose {
		logger.Level = logrus.DebugLevel
	} else {
		logger.Level = logrus.WarnLevel
	}
	return logger.WithField("pkg", name)
}
