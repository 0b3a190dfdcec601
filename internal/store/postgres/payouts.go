package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"restoledger/internal/domain/payout"
)

type PayoutRepo struct {
	db dbtx
}

const payoutCols = `id, restaurant_id, amount_cents, currency, as_of, status,
	created_at, paid_at, failure_reason, metadata`

// Create inserts the payout. ON CONFLICT on (restaurant_id, currency, as_of)
// DO NOTHING makes concurrent identical batch runs observe "already done"
// instead of an aborted transaction.
func (r *PayoutRepo) Create(ctx context.Context, p *payout.Payout) (bool, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO payouts (restaurant_id, amount_cents, currency, as_of, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT uq_payout_restaurant_currency_asof DO NOTHING
		RETURNING id, status, created_at`,
		p.RestaurantID, p.AmountCents, p.Currency, p.AsOf, p.Metadata,
	)

	err := row.Scan(&p.ID, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert payout for %s: %w", p.RestaurantID, err)
	}
	return true, nil
}

func (r *PayoutRepo) GetByID(ctx context.Context, id int64) (*payout.Payout, error) {
	row := r.db.QueryRow(ctx, `SELECT `+payoutCols+` FROM payouts WHERE id = $1`, id)

	var (
		p             payout.Payout
		failureReason *string
	)
	err := row.Scan(&p.ID, &p.RestaurantID, &p.AmountCents, &p.Currency, &p.AsOf,
		&p.Status, &p.CreatedAt, &p.PaidAt, &failureReason, &p.Metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payout %d: %w", id, err)
	}
	if failureReason != nil {
		p.FailureReason = *failureReason
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &p, nil
}

func (r *PayoutRepo) listItems(ctx context.Context, payoutID int64) ([]payout.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, payout_id, item_type, amount_cents
		FROM payout_items
		WHERE payout_id = $1
		ORDER BY id`, payoutID)
	if err != nil {
		return nil, fmt.Errorf("list payout items %d: %w", payoutID, err)
	}
	defer rows.Close()

	var items []payout.Item
	for rows.Next() {
		var it payout.Item
		if err := rows.Scan(&it.ID, &it.PayoutID, &it.Type, &it.AmountCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PayoutRepo) HasPending(ctx context.Context, restaurantID, currency string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payouts
			WHERE restaurant_id = $1
			  AND currency = $2
			  AND status IN ('created', 'processing')
		)`, restaurantID, currency).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending payouts %s/%s: %w", restaurantID, currency, err)
	}
	return exists, nil
}

func (r *PayoutRepo) ExistsForAsOf(ctx context.Context, restaurantID, currency string, asOf time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payouts
			WHERE restaurant_id = $1 AND currency = $2 AND as_of = $3
		)`, restaurantID, currency, asOf).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check payout as_of %s/%s: %w", restaurantID, currency, err)
	}
	return exists, nil
}

func (r *PayoutRepo) CreateItems(ctx context.Context, payoutID int64, items []payout.Item) error {
	for i := range items {
		err := r.db.QueryRow(ctx, `
			INSERT INTO payout_items (payout_id, item_type, amount_cents)
			VALUES ($1, $2, $3)
			RETURNING id`,
			payoutID, string(items[i].Type), items[i].AmountCents,
		).Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("insert payout item %s: %w", items[i].Type, err)
		}
		items[i].PayoutID = payoutID
	}
	return nil
}

// MarkPaid is guarded in SQL: only a non-terminal payout transitions, and
// paid_at is stamped in the same statement the status flips.
func (r *PayoutRepo) MarkPaid(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE payouts
		SET status = 'paid', paid_at = now()
		WHERE id = $1 AND status IN ('created', 'processing')`, id)
	if err != nil {
		return false, fmt.Errorf("mark payout %d paid: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PayoutRepo) MarkFailed(ctx context.Context, id int64, reason string) (bool, error) {
	if reason == "" {
		return false, fmt.Errorf("failure reason is required")
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE payouts
		SET status = 'failed', failure_reason = $2
		WHERE id = $1 AND status IN ('created', 'processing')`, id, reason)
	if err != nil {
		return false, fmt.Errorf("mark payout %d failed: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
