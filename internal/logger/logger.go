package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log line
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Format selects JSON lines or human readable text
type Format int

const (
	JSONFormat Format = iota
	TextFormat
)

// Fields are structured key/value pairs attached to a line.
type Fields map[string]interface{}

// Entry is one structured log line
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Logger writes leveled, structured lines. Child loggers made with WithComponent
// or With share the parent's output and lock.
type Logger struct {
	mu        *sync.Mutex
	level     Level
	format    Format
	output    io.Writer
	component string
	fields    Fields
	now       func() time.Time
	exit      func(int)
}

// Config holds logger configuration
type Config struct {
	Level     Level
	Format    Format
	Output    io.Writer
	Component string
}

// New creates a logger; a nil Output means stdout.
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Logger{
		mu:        &sync.Mutex{},
		level:     config.Level,
		format:    config.Format,
		output:    config.Output,
		component: config.Component,
		now:       time.Now,
		exit:      os.Exit,
	}
}

// NewDefault logs INFO and above as JSON to stdout
func NewDefault() *Logger {
	return New(Config{Level: INFO, Format: JSONFormat})
}

func (l *Logger) clone() *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := *l
	if len(l.fields) > 0 {
		c.fields = make(Fields, len(l.fields))
		for k, v := range l.fields {
			c.fields[k] = v
		}
	}
	return &c
}

// WithComponent returns a child logger tagged with component
func (l *Logger) WithComponent(component string) *Logger {
	c := l.clone()
	c.component = component
	return c
}

// With returns a child logger that adds fields to every line.
func (l *Logger) With(fields Fields) *Logger {
	c := l.clone()
	if c.fields == nil {
		c.fields = make(Fields, len(fields))
	}
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

// SetLevel sets the minimum level written
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetFormat switches between JSON and text output
func (l *Logger) SetFormat(format Format) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
}

// Enabled reports whether lines at level would be written
func (l *Logger) Enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level
}

// callerDepth skips write and the exported method that called it.
const callerDepth = 2

func (l *Logger) write(level Level, message string, fields Fields, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	entry := Entry{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   message,
		Component: l.component,
		Fields:    mergeFields(l.fields, fields),
	}
	if _, file, line, ok := runtime.Caller(callerDepth); ok {
		entry.Caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	if err != nil {
		entry.Error = err.Error()
	}

	var out []byte
	if l.format == JSONFormat {
		b, mErr := json.Marshal(entry)
		if mErr != nil {
			b, _ = json.Marshal(Entry{Timestamp: entry.Timestamp, Level: entry.Level, Message: message, Error: mErr.Error()})
		}
		out = append(b, '\n')
	} else {
		out = []byte(formatText(entry))
	}
	_, _ = l.output.Write(out)

	if level == FATAL {
		l.exit(1)
	}
}

func mergeFields(base, extra Fields) map[string]interface{} {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// formatText renders "[ts] LEVEL [component] message k=v ... error=... (file:line)" with keys sorted.
func formatText(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Timestamp, e.Level)
	if e.Component != "" {
		fmt.Fprintf(&b, " [%s]", e.Component)
	}
	b.WriteString(" ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " error=%q", e.Error)
	}
	if e.Caller != "" {
		fmt.Fprintf(&b, " (%s)", e.Caller)
	}
	b.WriteString("\n")
	return b.String()
}

func first(fields []Fields) Fields {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

func (l *Logger) Debug(message string, fields ...Fields) {
	l.write(DEBUG, message, first(fields), nil)
}

func (l *Logger) Info(message string, fields ...Fields) {
	l.write(INFO, message, first(fields), nil)
}

func (l *Logger) Warn(message string, fields ...Fields) {
	l.write(WARN, message, first(fields), nil)
}

func (l *Logger) Error(message string, err error, fields ...Fields) {
	l.write(ERROR, message, first(fields), err)
}

// Fatal logs and exits the process with status 1
func (l *Logger) Fatal(message string, err error, fields ...Fields) {
	l.write(FATAL, message, first(fields), err)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.write(DEBUG, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.write(INFO, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.write(WARN, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write(ERROR, fmt.Sprintf(format, args...), nil, nil)
}
