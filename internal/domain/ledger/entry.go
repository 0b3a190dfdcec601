package ledger

import (
	"fmt"
	"time"
)

// Entry is one immutable ledger posting. The ledger is the single source of
// truth for balances; entries are never updated or deleted.
type Entry struct {
	ID              int64
	RestaurantID    string
	AmountCents     int64
	Currency        string
	Type            EntryType
	Description     string
	RelatedEventID  *string
	RelatedPayoutID *int64
	CreatedAt       time.Time
	AvailableAt     *time.Time
}

// EntryType classifies a posting and fixes its sign.
type EntryType string

const (
	TypeSale          EntryType = "sale"
	TypeCommission    EntryType = "commission"
	TypeRefund        EntryType = "refund"
	TypePayoutReserve EntryType = "payout_reserve"
)

// Validate checks the per-type sign rule. Sales may be zero (a zero-amount
// charge is a legal processor event); refunds of zero-amount events are zero.
func (e *Entry) Validate() error {
	switch e.Type {
	case TypeSale:
		if e.AmountCents < 0 {
			return fmt.Errorf("sale entry must be >= 0, got %d", e.AmountCents)
		}
	case TypeCommission:
		if e.AmountCents >= 0 {
			return fmt.Errorf("commission entry must be < 0, got %d", e.AmountCents)
		}
	case TypeRefund:
		if e.AmountCents > 0 {
			return fmt.Errorf("refund entry must be <= 0, got %d", e.AmountCents)
		}
	case TypePayoutReserve:
		if e.AmountCents >= 0 {
			return fmt.Errorf("payout_reserve entry must be < 0, got %d", e.AmountCents)
		}
	default:
		return fmt.Errorf("unknown entry type: %q", e.Type)
	}
	return nil
}

// Available reports whether the entry counts toward the available balance at
// the given instant. Entries with no maturity apply immediately.
func (e *Entry) Available(now time.Time) bool {
	return e.AvailableAt == nil || !e.AvailableAt.After(now)
}
