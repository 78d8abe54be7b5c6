package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// InfoLogger writes request and lifecycle logs to stdout; ErrorLogger writes
// failures to stderr. Both are usable before ConfigureLoggers runs.
var (
	InfoLogger  = newLogger(os.Stdout, logrus.InfoLevel, &logrus.TextFormatter{FullTimestamp: true})
	ErrorLogger = newLogger(os.Stderr, logrus.ErrorLevel, &logrus.TextFormatter{FullTimestamp: true})
)

// ConfigureLoggers applies LOG_LEVEL and LOG_FORMAT. The level bounds the info
// logger only: errors are always reported. format is "text" or "json".
func ConfigureLoggers(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var formatter logrus.Formatter
	switch strings.ToLower(format) {
	case "", "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	case "json":
		formatter = &logrus.JSONFormatter{}
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	InfoLogger.SetLevel(lvl)
	InfoLogger.SetFormatter(formatter)
	ErrorLogger.SetFormatter(formatter)
	return nil
}

func newLogger(out *os.File, level logrus.Level, formatter logrus.Formatter) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(formatter)
	return l
}
