package event

import (
	"fmt"
	"regexp"
	"time"

	"restoledger/internal/domain/restaurant"
)

// ProcessorEvent is one webhook observation from the payment processor.
// Rows are append-only; event_id is the sole idempotency key.
type ProcessorEvent struct {
	ID           int64
	EventID      string
	Type         Type
	OccurredAt   time.Time
	RestaurantID string
	Currency     string
	AmountCents  int64
	FeeCents     int64
	CreatedAt    time.Time
	Metadata     map[string]any
}

// Type enumerates the processor event types the ledger understands.
type Type string

const (
	TypeChargeSucceeded Type = "charge_succeeded"
	TypeRefundSucceeded Type = "refund_succeeded"
	TypePayoutPaid      Type = "payout_paid"
)

// IsValid reports whether t is a known processor event type.
func (t Type) IsValid() bool {
	switch t {
	case TypeChargeSucceeded, TypeRefundSucceeded, TypePayoutPaid:
		return true
	}
	return false
}

// DefaultCurrency applies when a payload omits the currency field.
const DefaultCurrency = "PEN"

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// New validates the payload fields and builds an unsaved ProcessorEvent.
// An empty currency defaults to PEN.
func New(eventID string, eventType Type, occurredAt time.Time, restaurantID, currency string, amountCents, feeCents int64, metadata map[string]any) (*ProcessorEvent, error) {
	if eventID == "" || len(eventID) > 50 {
		return nil, fmt.Errorf("event_id must be 1..50 chars, got %d", len(eventID))
	}
	if !eventType.IsValid() {
		return nil, fmt.Errorf("unknown event_type: %q", eventType)
	}
	if occurredAt.IsZero() {
		return nil, fmt.Errorf("occurred_at is required")
	}
	if err := restaurant.ValidateID(restaurantID); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if !currencyRe.MatchString(currency) {
		return nil, fmt.Errorf("currency must be a 3-letter uppercase code, got %q", currency)
	}
	if amountCents < 0 {
		return nil, fmt.Errorf("amount_cents must be >= 0, got %d", amountCents)
	}
	if feeCents < 0 {
		return nil, fmt.Errorf("fee_cents must be >= 0, got %d", feeCents)
	}

	return &ProcessorEvent{
		EventID:      eventID,
		Type:         eventType,
		OccurredAt:   occurredAt,
		RestaurantID: restaurantID,
		Currency:     currency,
		AmountCents:  amountCents,
		FeeCents:     feeCents,
		Metadata:     metadata,
	}, nil
}

// PayoutID pulls the payout reference a payout_paid event carries in its
// metadata. Processor webhooks send it as a JSON number or string.
func (e *ProcessorEvent) PayoutID() (int64, bool) {
	if e.Metadata == nil {
		return 0, false
	}
	switch v := e.Metadata["payout_id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		var id int64
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil {
			return id, true
		}
	}
	return 0, false
}
