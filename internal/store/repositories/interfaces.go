package repositories

import (
	"context"
	"time"

	"restoledger/internal/domain/event"
	"restoledger/internal/domain/ledger"
	"restoledger/internal/domain/payout"
	"restoledger/internal/domain/restaurant"
)

// RestaurantRepository defines data access for settlement account holders.
type RestaurantRepository interface {
	// GetOrCreate inserts the restaurant with name=id if absent. The insert
	// must not poison an enclosing transaction when it loses a creation race.
	GetOrCreate(ctx context.Context, id string) (*restaurant.Restaurant, bool, error)
	GetByID(ctx context.Context, id string) (*restaurant.Restaurant, error)
	ListActiveIDs(ctx context.Context) ([]string, error)
}

// EventRepository defines data access for processor events.
type EventRepository interface {
	// Insert stores e and fills ID/CreatedAt. Returns false without error
	// when an event with the same event_id already exists; in that case e is
	// overwritten with the stored row.
	Insert(ctx context.Context, e *event.ProcessorEvent) (bool, error)
	GetByEventID(ctx context.Context, eventID string) (*event.ProcessorEvent, error)
}

// LedgerRepository defines data access for ledger postings and balance reads.
type LedgerRepository interface {
	CreateEntry(ctx context.Context, e *ledger.Entry) error

	// AvailableBalanceForUpdate sums matured entries for (restaurant,
	// currency) while row-locking them, serializing concurrent payout
	// generation for the pair. Must run inside a transaction.
	AvailableBalanceForUpdate(ctx context.Context, restaurantID, currency string) (int64, error)

	// BalanceSummary returns (available, pending, last_event_at) in one
	// query; (0, 0, nil) when no entries exist.
	BalanceSummary(ctx context.Context, restaurantID, currency string) (int64, int64, *time.Time, error)

	// TotalBalance sums every entry in the currency, matured or not.
	TotalBalance(ctx context.Context, currency string) (int64, error)

	// BreakdownByType sums matured sale/commission/refund entries for the
	// pair, grouped by entry type. Types with no entries are absent.
	BreakdownByType(ctx context.Context, restaurantID, currency string) (map[ledger.EntryType]int64, error)
}

// PayoutRepository defines data access for payouts and their items.
type PayoutRepository interface {
	// Create inserts p and fills ID/CreatedAt/Status. Returns false without
	// error when a payout for (restaurant_id, currency, as_of) already
	// exists — the batch idempotency guard.
	Create(ctx context.Context, p *payout.Payout) (bool, error)
	GetByID(ctx context.Context, id int64) (*payout.Payout, error)
	HasPending(ctx context.Context, restaurantID, currency string) (bool, error)
	ExistsForAsOf(ctx context.Context, restaurantID, currency string, asOf time.Time) (bool, error)
	CreateItems(ctx context.Context, payoutID int64, items []payout.Item) error

	// MarkPaid transitions created|processing → paid stamping paid_at.
	// Returns false when the payout is missing or already terminal.
	MarkPaid(ctx context.Context, id int64) (bool, error)
	MarkFailed(ctx context.Context, id int64, reason string) (bool, error)
}

// RepoSet bundles the repositories sharing one execution scope: either the
// pool (autocommit) or a single transaction.
type RepoSet interface {
	Restaurants() RestaurantRepository
	Events() EventRepository
	Ledger() LedgerRepository
	Payouts() PayoutRepository
}

// Store is the root data access handle.
type Store interface {
	RepoSet

	// WithTx runs fn inside one database transaction; the RepoSet it
	// receives is bound to that transaction. A non-nil error rolls back.
	WithTx(ctx context.Context, fn func(RepoSet) error) error
}
