package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func eventPayload() map[string]any {
	return map[string]any{
		"event_id":      "evt_1",
		"event_type":    "charge_succeeded",
		"occurred_at":   "2026-01-09T08:30:00Z",
		"restaurant_id": "res_abc",
		"currency":      "PEN",
		"amount_cents":  10000,
		"fee_cents":     300,
	}
}

func postEvent(t *testing.T, h http.HandlerFunc, payload any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/processor/events", jsonBody(t, payload))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestProcessEventRejectsInvalidPayloads(t *testing.T) {
	h := ProcessEvent(newTestStore(), nil)

	cases := []struct {
		name     string
		mutate   func(map[string]any)
		wantCode string
	}{
		{"unknown event type", func(p map[string]any) { p["event_type"] = "charge_pending" }, "EVENT_INVALID_TYPE"},
		{"missing occurred_at", func(p map[string]any) { delete(p, "occurred_at") }, "VALIDATION_ERROR"},
		{"missing amount_cents", func(p map[string]any) { delete(p, "amount_cents") }, "VALIDATION_ERROR"},
		{"missing event_id", func(p map[string]any) { delete(p, "event_id") }, "VALIDATION_ERROR"},
		{"bad restaurant id", func(p map[string]any) { p["restaurant_id"] = "xyz" }, "VALIDATION_ERROR"},
		{"negative amount", func(p map[string]any) { p["amount_cents"] = -5 }, "VALIDATION_ERROR"},
	}
	for _, tc := range cases {
		payload := eventPayload()
		tc.mutate(payload)
		rec := postEvent(t, h, payload)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: got status %d, want 422", tc.name, rec.Code)
			continue
		}
		env := decodeError(t, rec)
		if env.Success {
			t.Errorf("%s: success should be false", tc.name)
		}
		if env.Error.Code != tc.wantCode {
			t.Errorf("%s: got code %s, want %s", tc.name, env.Error.Code, tc.wantCode)
		}
		if env.Meta["path"] != "/v1/processor/events" {
			t.Errorf("%s: meta.path missing, got %v", tc.name, env.Meta)
		}
	}
}

func TestProcessEventRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/processor/events", jsonBody(t, "not an object"))
	rec := httptest.NewRecorder()
	ProcessEvent(newTestStore(), nil)(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", rec.Code)
	}
}

func TestProcessEventCreateThenReplay(t *testing.T) {
	h := ProcessEvent(newTestStore(), nil)

	rec := postEvent(t, h, eventPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("first post: got status %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var first processEventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	if first.Idempotent {
		t.Fatal("first post should not be idempotent")
	}
	if first.ID == 0 || first.EventID != "evt_1" {
		t.Fatalf("unexpected response: %+v", first)
	}

	rec = postEvent(t, h, eventPayload())
	if rec.Code != http.StatusOK {
		t.Fatalf("replay: got status %d, want 200", rec.Code)
	}
	var second processEventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if !second.Idempotent {
		t.Fatal("replay should be flagged idempotent")
	}
	if second.ID != first.ID {
		t.Fatalf("replay should return the stored event, got id %d want %d", second.ID, first.ID)
	}
}

func TestProcessEventCacheFastPath(t *testing.T) {
	store := newTestStore()
	cache := newFakeCache()
	h := ProcessEvent(store, cache)

	rec := postEvent(t, h, eventPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201", rec.Code)
	}
	if _, ok := cache.Get(context.Background(), "evt_1"); !ok {
		t.Fatal("stored event should be cached")
	}

	rec = postEvent(t, h, eventPayload())
	if rec.Code != http.StatusOK {
		t.Fatalf("cache hit: got status %d, want 200", rec.Code)
	}
	var resp processEventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Idempotent {
		t.Fatal("cache hit should be flagged idempotent")
	}
}

func TestProcessEventDefaultsCurrency(t *testing.T) {
	payload := eventPayload()
	delete(payload, "currency")

	rec := postEvent(t, ProcessEvent(newTestStore(), nil), payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201", rec.Code)
	}
	var resp processEventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Currency != "PEN" {
		t.Fatalf("expected default currency PEN, got %s", resp.Currency)
	}
	if resp.OccurredAt.IsZero() || !resp.OccurredAt.Equal(time.Date(2026, 1, 9, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected occurred_at: %v", resp.OccurredAt)
	}
}
