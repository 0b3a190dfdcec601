package postgres

import (
	"context"
	"fmt"
	"time"

	"restoledger/internal/domain/ledger"
)

type LedgerRepo struct {
	db dbtx
}

func (r *LedgerRepo) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO ledger_entries
			(restaurant_id, amount_cents, currency, entry_type, description,
			 related_event_id, related_payout_id, available_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		e.RestaurantID, e.AmountCents, e.Currency, string(e.Type), e.Description,
		e.RelatedEventID, e.RelatedPayoutID, e.AvailableAt,
	)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// AvailableBalanceForUpdate locks every matured row for the pair before
// summing. The FOR UPDATE in the subselect serializes concurrent payout
// generation: a second transaction blocks until the first commits its
// reserving entry, then computes the already-debited balance.
func (r *LedgerRepo) AvailableBalanceForUpdate(ctx context.Context, restaurantID, currency string) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM (
			SELECT amount_cents
			FROM ledger_entries
			WHERE restaurant_id = $1
			  AND currency = $2
			  AND (available_at IS NULL OR available_at <= now())
			FOR UPDATE
		) locked`, restaurantID, currency).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("lock available balance %s/%s: %w", restaurantID, currency, err)
	}
	return balance, nil
}

func (r *LedgerRepo) BalanceSummary(ctx context.Context, restaurantID, currency string) (int64, int64, *time.Time, error) {
	var (
		available, pending int64
		lastEventAt        *time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount_cents) FILTER (WHERE available_at IS NULL OR available_at <= now()), 0) AS available,
			COALESCE(SUM(amount_cents) FILTER (WHERE available_at > now()), 0) AS pending,
			MAX(created_at) FILTER (WHERE related_event_id IS NOT NULL) AS last_event_at
		FROM ledger_entries
		WHERE restaurant_id = $1 AND currency = $2`,
		restaurantID, currency).Scan(&available, &pending, &lastEventAt)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("balance summary %s/%s: %w", restaurantID, currency, err)
	}
	return available, pending, lastEventAt, nil
}

func (r *LedgerRepo) TotalBalance(ctx context.Context, currency string) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM ledger_entries
		WHERE currency = $1`, currency).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total balance %s: %w", currency, err)
	}
	return total, nil
}

func (r *LedgerRepo) BreakdownByType(ctx context.Context, restaurantID, currency string) (map[ledger.EntryType]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT entry_type, COALESCE(SUM(amount_cents), 0)
		FROM ledger_entries
		WHERE restaurant_id = $1
		  AND currency = $2
		  AND (available_at IS NULL OR available_at <= now())
		  AND entry_type IN ('sale', 'commission', 'refund')
		GROUP BY entry_type`, restaurantID, currency)
	if err != nil {
		return nil, fmt.Errorf("breakdown %s/%s: %w", restaurantID, currency, err)
	}
	defer rows.Close()

	totals := make(map[ledger.EntryType]int64)
	for rows.Next() {
		var (
			entryType string
			amount    int64
		)
		if err := rows.Scan(&entryType, &amount); err != nil {
			return nil, err
		}
		totals[ledger.EntryType(entryType)] = amount
	}
	return totals, rows.Err()
}
