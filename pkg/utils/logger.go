package utils

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger     *logrus.Logger
	loggerOnce sync.Once
)

// GetLogger returns the process-wide logger instance
func GetLogger() *logrus.Logger {
	loggerOnce.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stdout)
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	})
	return logger
}

// ConfigureLogger applies the configured level and format to the global logger
func ConfigureLogger(level, format string) {
	l := GetLogger()

	if parsed, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(parsed)
	}

	switch format {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.JSONFormatter{})
	}
}

// LogWithRequestID returns a log entry pre-tagged with a request ID
func LogWithRequestID(requestID string) *logrus.Entry {
	return GetLogger().WithField("request_id", requestID)
}
