// Package balance derives restaurant balances from the ledger. Nothing here
// is ever stored; the ledger is the single source of truth.
package balance

import (
	"context"
	"time"

	"restoledger/internal/store/repositories"
)

// RestaurantBalance is the derived view for one (restaurant, currency).
type RestaurantBalance struct {
	RestaurantID   string
	Currency       string
	AvailableCents int64
	PendingCents   int64
	TotalCents     int64
	LastEventAt    *time.Time
}

type Calculator struct {
	ledger repositories.LedgerRepository
}

func NewCalculator(ledgerRepo repositories.LedgerRepository) *Calculator {
	return &Calculator{ledger: ledgerRepo}
}

// Balance computes available, pending and the last event timestamp in one
// query. With no entries everything is zero and LastEventAt is nil.
func (c *Calculator) Balance(ctx context.Context, restaurantID, currency string) (*RestaurantBalance, error) {
	available, pending, lastEventAt, err := c.ledger.BalanceSummary(ctx, restaurantID, currency)
	if err != nil {
		return nil, err
	}
	return &RestaurantBalance{
		RestaurantID:   restaurantID,
		Currency:       currency,
		AvailableCents: available,
		PendingCents:   pending,
		TotalCents:     available + pending,
		LastEventAt:    lastEventAt,
	}, nil
}
