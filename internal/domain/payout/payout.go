package payout

import (
	"fmt"
	"time"
)

// Payout reserves available balance for a future bank disbursement.
// At most one payout exists per (restaurant, currency, as_of).
type Payout struct {
	ID            int64
	RestaurantID  string
	AmountCents   int64
	Currency      string
	AsOf          time.Time // date precision
	Status        Status
	CreatedAt     time.Time
	PaidAt        *time.Time
	FailureReason string
	Metadata      map[string]any
	Items         []Item
}

// Item is one breakdown line of a payout.
type Item struct {
	ID          int64
	PayoutID    int64
	Type        ItemType
	AmountCents int64
}

// ItemType maps ledger entry types onto payout breakdown lines.
type ItemType string

const (
	ItemNetSales ItemType = "net_sales"
	ItemFees     ItemType = "fees"
	ItemRefunds  ItemType = "refunds"
)

// Status is the payout lifecycle state.
type Status string

const (
	StatusCreated    Status = "created"
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusFailed
}

// CanTransition encodes created → processing → paid|failed, with created
// allowed to jump straight to a terminal state.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusCreated:
		return to == StatusProcessing || to == StatusPaid || to == StatusFailed
	case StatusProcessing:
		return to == StatusPaid || to == StatusFailed
	}
	return false
}

// MarkPaid transitions the payout to paid and stamps paid_at.
func (p *Payout) MarkPaid(now time.Time) error {
	if !p.Status.CanTransition(StatusPaid) {
		return fmt.Errorf("cannot mark payout %d paid from status %s", p.ID, p.Status)
	}
	p.Status = StatusPaid
	p.PaidAt = &now
	return nil
}

// MarkFailed transitions the payout to failed with a mandatory reason.
func (p *Payout) MarkFailed(reason string) error {
	if reason == "" {
		return fmt.Errorf("failure reason is required")
	}
	if !p.Status.CanTransition(StatusFailed) {
		return fmt.Errorf("cannot mark payout %d failed from status %s", p.ID, p.Status)
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	return nil
}
