package core

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type LogLevel log.Level

const (
	DebugLevel LogLevel = LogLevel(log.DebugLevel)
	InfoLevel  LogLevel = LogLevel(log.InfoLevel)
	WarnLevel  LogLevel = LogLevel(log.WarnLevel)
	ErrorLevel LogLevel = LogLevel(log.ErrorLevel)
	FatalLevel LogLevel = LogLevel(log.FatalLevel)
)

// ParseLogLevel maps a config string to a LogLevel. Unknown values fall back to info.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "Bolt ⚡ ",
			})
			l.SetLevel(log.DebugLevel)
			// the wrappers below add one frame
			l.SetCallerOffset(1)
			singleton = &logger{l}
		})
	return singleton
}

func SetLevel(level LogLevel) {
	getLogger().SetLevel(log.Level(level))
}

func GetLevel() LogLevel {
	return LogLevel(getLogger().GetLevel())
}

// SetOutput redirects the engine log, mostly useful to silence tests.
func SetOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
