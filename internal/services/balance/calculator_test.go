package balance

import (
	"context"
	"testing"
	"time"

	"restoledger/internal/domain/ledger"
	"restoledger/internal/store/memstore"
)

func TestBalanceEmptyRestaurant(t *testing.T) {
	store := memstore.New()

	b, err := NewCalculator(store.Ledger()).Balance(context.Background(), "res_ghost", "PEN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.AvailableCents != 0 || b.PendingCents != 0 || b.TotalCents != 0 {
		t.Fatalf("empty restaurant should read all zeros: %+v", b)
	}
	if b.LastEventAt != nil {
		t.Fatalf("empty restaurant should have nil last_event_at, got %v", b.LastEventAt)
	}
}

func TestBalanceSplitsAvailableAndPending(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store := memstore.New()
	store.Now = func() time.Time { return now }

	ctx := context.Background()
	past := now.Add(-time.Hour)
	future := now.Add(48 * time.Hour)
	eventID := "evt_1"
	entries := []*ledger.Entry{
		{RestaurantID: "res_abc", Currency: "PEN", Type: ledger.TypeSale, AmountCents: 10000, AvailableAt: &past, RelatedEventID: &eventID},
		{RestaurantID: "res_abc", Currency: "PEN", Type: ledger.TypeSale, AmountCents: 7000, AvailableAt: &future, RelatedEventID: &eventID},
		{RestaurantID: "res_abc", Currency: "PEN", Type: ledger.TypeCommission, AmountCents: -300, RelatedEventID: &eventID},
		{RestaurantID: "res_other", Currency: "PEN", Type: ledger.TypeSale, AmountCents: 99999},
		{RestaurantID: "res_abc", Currency: "USD", Type: ledger.TypeSale, AmountCents: 5555},
	}
	for _, e := range entries {
		if err := store.Ledger().CreateEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	b, err := NewCalculator(store.Ledger()).Balance(ctx, "res_abc", "PEN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.AvailableCents != 9700 {
		t.Fatalf("available: got %d, want 9700", b.AvailableCents)
	}
	if b.PendingCents != 7000 {
		t.Fatalf("pending: got %d, want 7000", b.PendingCents)
	}
	if b.TotalCents != 16700 {
		t.Fatalf("total: got %d, want 16700", b.TotalCents)
	}
	if b.LastEventAt == nil {
		t.Fatal("last_event_at should be set")
	}
}
