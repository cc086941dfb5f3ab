package models

import "time"

// EmailMessage holds one outbound email. Immutable once queued.
type EmailMessage struct {
	Recipient string
	Subject   string
	Body      string
}

// LogLevel classifies a log entry.
type LogLevel string

const (
	LogDebug LogLevel = "DEBUG"
	LogInfo  LogLevel = "INFO"
	LogWarn  LogLevel = "WARN"
	LogError LogLevel = "ERROR"
	LogFatal LogLevel = "FATAL"
)

// LogEntry holds one queued log record. Immutable once queued.
type LogEntry struct {
	EventTime time.Time
	Level     LogLevel
	Message   string
}

// NewLogEntry stamps a log entry with the current time.
func NewLogEntry(level LogLevel, message string) LogEntry {
	return LogEntry{EventTime: time.Now(), Level: level, Message: message}
}
