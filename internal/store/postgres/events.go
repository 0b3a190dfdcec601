package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"restoledger/internal/domain/event"
)

type EventRepo struct {
	db dbtx
}

const eventCols = `id, event_id, event_type, occurred_at, restaurant_id, currency,
	amount_cents, fee_cents, created_at, metadata`

// Insert stores the event exactly once. The unique index on event_id is the
// idempotency key: ON CONFLICT DO NOTHING turns a duplicate (including one
// from a concurrent identical request) into a silent miss instead of an
// aborted transaction, and the re-read returns the first writer's row.
func (r *EventRepo) Insert(ctx context.Context, e *event.ProcessorEvent) (bool, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO processor_events
			(event_id, event_type, occurred_at, restaurant_id, currency,
			 amount_cents, fee_cents, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING id, created_at`,
		e.EventID, string(e.Type), e.OccurredAt, e.RestaurantID, e.Currency,
		e.AmountCents, e.FeeCents, e.Metadata,
	)

	err := row.Scan(&e.ID, &e.CreatedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("insert event %s: %w", e.EventID, err)
	}

	stored, err := r.GetByEventID(ctx, e.EventID)
	if err != nil {
		return false, err
	}
	if stored == nil {
		return false, fmt.Errorf("event %s conflicted but is not readable", e.EventID)
	}
	*e = *stored
	return false, nil
}

func (r *EventRepo) GetByEventID(ctx context.Context, eventID string) (*event.ProcessorEvent, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventCols+` FROM processor_events WHERE event_id = $1`, eventID)

	var e event.ProcessorEvent
	err := row.Scan(&e.ID, &e.EventID, &e.Type, &e.OccurredAt, &e.RestaurantID,
		&e.Currency, &e.AmountCents, &e.FeeCents, &e.CreatedAt, &e.Metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventID, err)
	}
	return &e, nil
}
