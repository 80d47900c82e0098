package logger

import (
	"fmt"
	"strings"
	"sync/atomic"
)

var global atomic.Pointer[Logger]

func init() {
	global.Store(NewDefault())
}

// ParseLevel accepts debug, info, warn/warning, error and fatal in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", s)
	}
}

// ParseFormat accepts json, text and auto. Auto picks text for development and JSON otherwise.
func ParseFormat(s, environment string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSONFormat, nil
	case "text":
		return TextFormat, nil
	case "auto", "":
		if strings.EqualFold(environment, "development") {
			return TextFormat, nil
		}
		return JSONFormat, nil
	default:
		return JSONFormat, fmt.Errorf("unknown log format %q", s)
	}
}

// Configure applies level and format names to the global logger.
func Configure(level, format, environment string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	f, err := ParseFormat(format, environment)
	if err != nil {
		return err
	}
	l := Global()
	l.SetLevel(lvl)
	l.SetFormat(f)
	return nil
}

// Global returns the process-wide logger
func Global() *Logger {
	return global.Load()
}

// SetGlobal replaces the process-wide logger
func SetGlobal(l *Logger) {
	global.Store(l)
}

// Component is shorthand for Global().WithComponent(name)
func Component(name string) *Logger {
	return Global().WithComponent(name)
}

func Debug(message string, fields ...Fields) {
	Global().write(DEBUG, message, first(fields), nil)
}

func Info(message string, fields ...Fields) {
	Global().write(INFO, message, first(fields), nil)
}

func Warn(message string, fields ...Fields) {
	Global().write(WARN, message, first(fields), nil)
}

func Error(message string, err error, fields ...Fields) {
	Global().write(ERROR, message, first(fields), err)
}

func Fatal(message string, err error, fields ...Fields) {
	Global().write(FATAL, message, first(fields), err)
}

func Infof(format string, args ...interface{}) {
	Global().write(INFO, fmt.Sprintf(format, args...), nil, nil)
}

func Warnf(format string, args ...interface{}) {
	Global().write(WARN, fmt.Sprintf(format, args...), nil, nil)
}
