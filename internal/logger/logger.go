package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Package logger wraps logrus behind the package-level helpers the rest of
// the codebase calls. Level comes from PODDS_LOG_LEVEL, format from
// PODDS_LOG_FORMAT ("json" for machine-readable output).

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.SetOutput(os.Stdout)

	level := strings.ToLower(os.Getenv("PODDS_LOG_LEVEL"))
	if parsed, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(parsed)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	if strings.ToLower(os.Getenv("PODDS_LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
}

// GetLogger returns the underlying logrus instance for callers that need
// field-scoped entries.
func GetLogger() *logrus.Logger {
	return log
}

// SetLevel overrides the level chosen at init time.
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// WithFields returns an entry carrying structured context.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// WithComponent returns an entry tagged with the originating component.
func WithComponent(name string) *logrus.Entry {
	return log.WithField("component", name)
}

func Debug(args ...any) {
	log.Debugln(args...)
}

func Info(args ...any) {
	log.Infoln(args...)
}

func Warn(args ...any) {
	log.Warnln(args...)
}

func Error(args ...any) {
	log.Errorln(args...)
}
