package domain

import "time"

// LogLevel is the severity of a pipeline log event.
type LogLevel string

const (
	LevelInfo    LogLevel = "info"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
	LevelSuccess LogLevel = "success"
)

// LogEvent is one append-only progress record for a channel. Events are
// written to the durable log and fanned out to live subscribers; they are
// never mutated or deleted by the pipeline.
type LogEvent struct {
	ID        string    `db:"id"`
	ChannelID string    `db:"channel_id"`
	UserID    string    `db:"user_id"`
	Message   string    `db:"message"`
	Level     LogLevel  `db:"level"`
	CreatedAt time.Time `db:"created_at"`
}
