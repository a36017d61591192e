// Package logging provides the shared logrus logger constructor.
package logging

import (
	"github.com/sirupsen/logrus"
)

// NewLogger returns a logger with full timestamps at the given level.
// Unknown level strings fall back to info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}
