package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"restoledger/internal/domain/ledger"
)

func TestAdminCreatePayout(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	if _, _, err := store.Restaurants().GetOrCreate(ctx, "res_abc"); err != nil {
		t.Fatal(err)
	}
	if err := store.Ledger().CreateEntry(ctx, &ledger.Entry{
		RestaurantID: "res_abc", Currency: "PEN", Type: ledger.TypeSale, AmountCents: 50000,
	}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/payouts", jsonBody(t, map[string]any{"restaurant_id": "res_abc"}))
	rec := httptest.NewRecorder()
	AdminCreatePayout(store)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["payout_id"] == nil || resp["payout_id"] == float64(0) {
		t.Fatalf("expected payout_id in response, got %v", resp)
	}
}

func TestAdminCreatePayoutInsufficientBalance(t *testing.T) {
	store := newTestStore()
	if _, _, err := store.Restaurants().GetOrCreate(context.Background(), "res_abc"); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/payouts", jsonBody(t, map[string]any{"restaurant_id": "res_abc"}))
	rec := httptest.NewRecorder()
	AdminCreatePayout(store)(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("got status %d, want 409", rec.Code)
	}
	if env := decodeError(t, rec); env.Error.Code != "PAYOUT_INSUFFICIENT_BALANCE" {
		t.Fatalf("got code %s, want PAYOUT_INSUFFICIENT_BALANCE", env.Error.Code)
	}
}

func TestAdminCreatePayoutRejectsBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/admin/payouts", jsonBody(t, map[string]any{"restaurant_id": "abc"}))
	rec := httptest.NewRecorder()
	AdminCreatePayout(newTestStore())(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", rec.Code)
	}
}
