package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"restoledger/internal/domain/payout"
	"restoledger/internal/services/payouts"
	"restoledger/internal/store/memstore"
)

func TestRunPayoutsValidation(t *testing.T) {
	h := RunPayouts(payouts.NewRunner(newTestStore(), 4))

	minAmount := int64(0)
	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing as_of", map[string]any{"currency": "PEN"}},
		{"bad as_of", map[string]any{"as_of": "10-01-2026"}},
		{"non-positive min_amount", map[string]any{"as_of": "2026-01-10", "min_amount": minAmount}},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/payouts/run", jsonBody(t, tc.payload))
		rec := httptest.NewRecorder()
		h(rec, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: got status %d, want 422", tc.name, rec.Code)
			continue
		}
		if env := decodeError(t, rec); env.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("%s: got code %s, want VALIDATION_ERROR", tc.name, env.Error.Code)
		}
	}
}

func TestRunPayoutsAccepted(t *testing.T) {
	runner := payouts.NewRunner(newTestStore(), 4)
	h := RunPayouts(runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/payouts/run", jsonBody(t, map[string]any{"as_of": "2026-01-10"}))
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("got status %d, want 202 (body %s)", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["currency"] != "PEN" {
		t.Fatalf("expected default currency PEN, got %v", resp["currency"])
	}
	if resp["as_of"] != "2026-01-10" {
		t.Fatalf("unexpected as_of: %v", resp["as_of"])
	}
	if resp["min_amount"] != float64(defaultMinAmount) {
		t.Fatalf("expected default min_amount %d, got %v", defaultMinAmount, resp["min_amount"])
	}
}

func payoutRouter(store *memstore.Store) http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/payouts/{payoutID}", GetPayout(store))
	return r
}

func TestGetPayoutNotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/payouts/999", nil)
	rec := httptest.NewRecorder()
	payoutRouter(newTestStore()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
	env := decodeError(t, rec)
	if env.Error.Code != "RESOURCE_NOT_FOUND" {
		t.Fatalf("got code %s, want RESOURCE_NOT_FOUND", env.Error.Code)
	}
	if env.Error.Details["payout_id"] != float64(999) {
		t.Fatalf("expected payout_id detail, got %v", env.Error.Details)
	}
}

func TestGetPayoutRejectsNonInteger(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/payouts/abc", nil)
	rec := httptest.NewRecorder()
	payoutRouter(newTestStore()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", rec.Code)
	}
}

func TestGetPayoutWithItems(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	p := &payout.Payout{
		RestaurantID: "res_abc",
		AmountCents:  25000,
		Currency:     "PEN",
		AsOf:         time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	if _, err := store.Payouts().Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	items := []payout.Item{
		{Type: payout.ItemNetSales, AmountCents: 28000},
		{Type: payout.ItemFees, AmountCents: -3000},
	}
	if err := store.Payouts().CreateItems(ctx, p.ID, items); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/payouts/1", nil)
	rec := httptest.NewRecorder()
	payoutRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var resp payoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.AmountCents != 25000 || resp.Status != "created" {
		t.Fatalf("unexpected payout: %+v", resp)
	}
	if resp.AsOf != "2026-01-10" {
		t.Fatalf("as_of should be a date string, got %q", resp.AsOf)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	if resp.Items[0].ItemType != "net_sales" || resp.Items[0].AmountCents != 28000 {
		t.Fatalf("unexpected first item: %+v", resp.Items[0])
	}
}
