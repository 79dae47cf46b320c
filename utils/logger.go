package utils

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"time"
)

// LogLevel represents different log levels
type LogLevel string

const (
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// LogEntry is one engine event on the wire. Fields carry the attempt
// dimensions (job_id, platform, outcome) as flat strings so log pipelines can
// index them without schema guessing.
type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     LogLevel          `json:"level"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Logger emits one JSON object per line for pipeline-level events.
type Logger struct {
	logger *log.Logger
}

// NewLogger creates a logger writing to stdout.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout)
}

// NewLoggerTo creates a logger writing to the given sink.
func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{
		logger: log.New(w, "", 0),
	}
}

// Info logs an attempt lifecycle event.
func (l *Logger) Info(message string, fields map[string]string) {
	l.output(LogEntry{
		Timestamp: time.Now(),
		Level:     INFO,
		Message:   message,
		Fields:    fields,
	})
}

// Warn logs a degraded-but-continuing condition.
func (l *Logger) Warn(message string, fields map[string]string) {
	l.output(LogEntry{
		Timestamp: time.Now(),
		Level:     WARN,
		Message:   message,
		Fields:    fields,
	})
}

// Error logs a failure with its cause.
func (l *Logger) Error(message string, err error, fields map[string]string) {
	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     ERROR,
		Message:   message,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	l.output(entry)
}

func (l *Logger) output(entry LogEntry) {
	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		log.Printf("Error marshaling log entry: %v", err)
		return
	}

	l.logger.Println(string(jsonBytes))
}

// Global logger instance
var GlobalLogger = NewLogger()
