package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"restoledger/internal/domain/event"
	"restoledger/internal/store/memstore"
)

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestStore() *memstore.Store {
	s := memstore.New()
	s.Now = func() time.Time { return testNow }
	return s
}

type errEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
	Meta map[string]any `json:"meta"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errEnvelope {
	t.Helper()
	var env errEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (body %s)", err, rec.Body.String())
	}
	return env
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(raw)
}

// fakeCache is an in-memory EventCache for handler tests.
type fakeCache struct {
	events map[string]*event.ProcessorEvent
}

func newFakeCache() *fakeCache {
	return &fakeCache{events: make(map[string]*event.ProcessorEvent)}
}

func (c *fakeCache) Get(_ context.Context, eventID string) (*event.ProcessorEvent, bool) {
	e, ok := c.events[eventID]
	return e, ok
}

func (c *fakeCache) Set(_ context.Context, e *event.ProcessorEvent) {
	c.events[e.EventID] = e
}
