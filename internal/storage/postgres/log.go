package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"commentpulse/internal/domain"
)

type LogStore struct {
	db *sqlx.DB
}

func NewLogStore(db *sqlx.DB) *LogStore {
	return &LogStore{db: db}
}

// Append writes one log event. The table is append-only from the
// pipeline's point of view; nothing here updates or deletes.
func (s *LogStore) Append(ctx context.Context, event *domain.LogEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO channel_logs (id, channel_id, user_id, message, level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID,
		event.ChannelID,
		event.UserID,
		event.Message,
		event.Level,
		event.CreatedAt,
	)
	return err
}

// ListByChannel returns the most recent events for a channel, newest
// first.
func (s *LogStore) ListByChannel(ctx context.Context, channelID, userID string, limit int) ([]domain.LogEvent, error) {
	var events []domain.LogEvent
	err := s.db.SelectContext(ctx, &events, `
		SELECT id, channel_id, user_id, message, level, created_at
		FROM channel_logs
		WHERE channel_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		channelID, userID, limit,
	)
	return events, err
}
