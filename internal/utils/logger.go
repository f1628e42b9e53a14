package utils

import (
	"strings"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// Logger returns the process-wide logger.
func Logger() *logrus.Logger { return logger }

// SetLogLevel parses level; unknown values keep the current level.
func SetLogLevel(level string) {
	if lvl, err := logrus.ParseLevel(strings.TrimSpace(level)); err == nil {
		logger.SetLevel(lvl)
	}
}

// LogEvent writes a standardized line with module/action/request_id fields.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	logger.WithFields(logrus.Fields{
		"module":     strings.ToUpper(module),
		"action":     action,
		"request_id": strings.TrimSpace(requestID),
	}).Info(message)
}

// LogWarn is LogEvent at warning level.
func LogWarn(requestID, module, action, message string) {
	logger.WithFields(logrus.Fields{
		"module":     strings.ToUpper(module),
		"action":     action,
		"request_id": strings.TrimSpace(requestID),
	}).Warn(message)
}
