package repository

import (
	"context"
	"fmt"

	"printsociety/internal/notify"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// outboxRepository implements OutboxRepository on the notification_outbox table.
type outboxRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewOutboxRepository creates a new PostgreSQL-backed outbox.
func NewOutboxRepository(db DB, logger zerolog.Logger) OutboxRepository {
	return &outboxRepository{
		db:     db,
		logger: logger.With().Str("repository", "outbox").Logger(),
	}
}

// Insert queues an event within the provided transaction.
func (r *outboxRepository) Insert(ctx context.Context, tx pgx.Tx, e notify.Event) error {
	query := `
		INSERT INTO notification_outbox (aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := tx.Exec(ctx, query, e.AggregateID, e.EventType, e.Payload, e.CreatedAt); err != nil {
		r.logger.Error().
			Err(err).
			Str("aggregate_id", e.AggregateID.String()).
			Str("event_type", e.EventType).
			Msg("failed to insert outbox event")
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// FetchUnprocessed returns up to limit unpublished events in insertion order.
func (r *outboxRepository) FetchUnprocessed(ctx context.Context, limit int) ([]notify.Event, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM notification_outbox
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query outbox")
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var events []notify.Event
	for rows.Next() {
		var e notify.Event
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan outbox row")
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating outbox rows")
		return nil, fmt.Errorf("error iterating outbox: %w", err)
	}

	return events, nil
}

// MarkProcessed stamps an event as published.
func (r *outboxRepository) MarkProcessed(ctx context.Context, id int64) error {
	query := `UPDATE notification_outbox SET processed_at = NOW() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		r.logger.Error().Err(err).Int64("event_id", id).Msg("failed to mark outbox event processed")
		return fmt.Errorf("failed to mark outbox event processed: %w", err)
	}
	return nil
}
