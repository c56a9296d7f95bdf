// Package debug provides the module's logger and the protocol trace
// enabled by $WAYLAND_DEBUG.
package debug

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the logger used by every package in the module. Its level
// is taken from $LOG_LEVEL and defaults to info.
var Logger *log.Logger

var trace bool

func init() {
	Logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "wlcomp",
	})
	SetLevel(os.Getenv("LOG_LEVEL"))

	debugLevel, err := strconv.ParseInt(os.Getenv("WAYLAND_DEBUG"), 10, 0)
	if err != nil {
		return
	}
	if debugLevel > 0 {
		trace = true
		Logger.SetLevel(log.DebugLevel)
	}
}

// SetLevel sets the logger's level by name. Unknown names select the
// info level.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		Logger.SetLevel(log.DebugLevel)
	case "WARN", "WARNING":
		Logger.SetLevel(log.WarnLevel)
	case "ERROR":
		Logger.SetLevel(log.ErrorLevel)
	case "FATAL":
		Logger.SetLevel(log.FatalLevel)
	default:
		Logger.SetLevel(log.InfoLevel)
	}
}

// Tracing reports whether protocol tracing is enabled.
func Tracing() bool {
	return trace
}

// Printf logs a line of protocol trace. It does nothing unless
// $WAYLAND_DEBUG is set to a positive number.
func Printf(str string, args ...any) {
	if trace {
		Logger.Debugf(str, args...)
	}
}

func Debug(msg any, keyvals ...any) {
	Logger.Debug(msg, keyvals...)
}

func Info(msg any, keyvals ...any) {
	Logger.Info(msg, keyvals...)
}

func Warn(msg any, keyvals ...any) {
	Logger.Warn(msg, keyvals...)
}

func Error(msg any, keyvals ...any) {
	Logger.Error(msg, keyvals...)
}
