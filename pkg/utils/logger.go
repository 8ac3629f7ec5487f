package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// InitLogger initializes the global logger
func InitLogger(level, format, output, file string) error {
	Logger = logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(logLevel)

	if format == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}

	if output == "file" && file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		Logger.SetOutput(f)
	} else {
		Logger.SetOutput(os.Stdout)
	}

	return nil
}

// GetLogger returns the global logger instance, initializing it with
// defaults when needed
func GetLogger() *logrus.Logger {
	if Logger == nil {
		InitLogger("info", "json", "stdout", "")
	}
	return Logger
}

// WithComponent returns a logger entry tagged with a component name
func WithComponent(name string) *logrus.Entry {
	return GetLogger().WithField("component", name)
}
