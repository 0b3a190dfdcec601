package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"restoledger/internal/apperr"
	"restoledger/internal/domain/event"
	"restoledger/internal/services/processor"
	"restoledger/internal/store/repositories"
)

// EventCache is the optional idempotency fast path in front of the event_id
// unique index. Implementations must fail open: a miss or outage just sends
// the request down the normal transactional path.
type EventCache interface {
	Get(ctx context.Context, eventID string) (*event.ProcessorEvent, bool)
	Set(ctx context.Context, e *event.ProcessorEvent)
}

type processEventRequest struct {
	EventID      string         `json:"event_id"`
	EventType    string         `json:"event_type"`
	OccurredAt   *time.Time     `json:"occurred_at"`
	RestaurantID string         `json:"restaurant_id"`
	Currency     string         `json:"currency"`
	AmountCents  *int64         `json:"amount_cents"`
	FeeCents     int64          `json:"fee_cents"`
	Metadata     map[string]any `json:"metadata"`
}

type processEventResponse struct {
	ID           int64          `json:"id"`
	EventID      string         `json:"event_id"`
	EventType    string         `json:"event_type"`
	OccurredAt   time.Time      `json:"occurred_at"`
	RestaurantID string         `json:"restaurant_id"`
	Currency     string         `json:"currency"`
	AmountCents  int64          `json:"amount_cents"`
	FeeCents     int64          `json:"fee_cents"`
	CreatedAt    time.Time      `json:"created_at"`
	Idempotent   bool           `json:"idempotent"`
	Meta         map[string]any `json:"meta"`
}

func eventResponse(e *event.ProcessorEvent, idempotent bool) processEventResponse {
	return processEventResponse{
		ID:           e.ID,
		EventID:      e.EventID,
		EventType:    string(e.Type),
		OccurredAt:   e.OccurredAt,
		RestaurantID: e.RestaurantID,
		Currency:     e.Currency,
		AmountCents:  e.AmountCents,
		FeeCents:     e.FeeCents,
		CreatedAt:    e.CreatedAt,
		Idempotent:   idempotent,
		Meta:         responseMeta(),
	}
}

// ProcessEvent ingests one processor event: 201 when newly stored, 200 with
// idempotent=true on a repeat. The whole operation runs in one transaction
// begun here.
func ProcessEvent(store repositories.Store, cache EventCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in processEventRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, r, apperr.Validation("cannot parse request body", nil))
			return
		}
		if in.EventType != "" && !event.Type(in.EventType).IsValid() {
			writeError(w, r, apperr.InvalidEventType(in.EventType))
			return
		}
		if in.OccurredAt == nil {
			writeError(w, r, apperr.Validation("occurred_at is required", nil))
			return
		}
		if in.AmountCents == nil {
			writeError(w, r, apperr.Validation("amount_cents is required", nil))
			return
		}

		payload, err := event.New(in.EventID, event.Type(in.EventType), *in.OccurredAt,
			in.RestaurantID, in.Currency, *in.AmountCents, in.FeeCents, in.Metadata)
		if err != nil {
			writeError(w, r, apperr.Validation(err.Error(), nil))
			return
		}

		if cache != nil {
			if cached, ok := cache.Get(r.Context(), payload.EventID); ok {
				writeJSON(w, http.StatusOK, eventResponse(cached, true))
				return
			}
		}

		var (
			stored *event.ProcessorEvent
			isNew  bool
		)
		err = store.WithTx(r.Context(), func(repos repositories.RepoSet) error {
			var txErr error
			stored, isNew, txErr = processor.New(repos).Process(r.Context(), payload)
			return txErr
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		if cache != nil {
			cache.Set(r.Context(), stored)
		}

		status := http.StatusOK
		if isNew {
			status = http.StatusCreated
		}
		writeJSON(w, status, eventResponse(stored, !isNew))
	}
}
