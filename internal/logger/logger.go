// Package logger provides the shared structured logger for redgit.
// Commands log human-facing output with fatih/color directly; this logger
// carries diagnostics and warnings, and stays quiet at the default level.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the process-wide logger instance.
var Logger *log.Logger

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.WarnLevel)
}

// Configure sets the log level and destination. The CLI flag takes
// precedence over the REDGIT_LOG_LEVEL environment variable.
func Configure(level, file string) error {
	if level == "" {
		level = os.Getenv("REDGIT_LOG_LEVEL")
	}

	var output io.Writer = os.Stderr
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		output = f
	}

	Logger = log.New(output)
	Logger.SetTimeFormat("")
	Logger.SetLevel(parseLevel(level))
	return nil
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// Debug logs at debug level with optional key-value pairs.
func Debug(msg string, keyvals ...interface{}) { Logger.Debug(msg, keyvals...) }

// Info logs at info level with optional key-value pairs.
func Info(msg string, keyvals ...interface{}) { Logger.Info(msg, keyvals...) }

// Warn logs at warn level with optional key-value pairs.
func Warn(msg string, keyvals ...interface{}) { Logger.Warn(msg, keyvals...) }

// Error logs at error level with optional key-value pairs.
func Error(msg string, keyvals ...interface{}) { Logger.Error(msg, keyvals...) }
