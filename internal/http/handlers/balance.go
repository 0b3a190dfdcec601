package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"restoledger/internal/apperr"
	"restoledger/internal/domain/event"
	"restoledger/internal/domain/restaurant"
	"restoledger/internal/services/balance"
	"restoledger/internal/store/repositories"
)

type balanceResponse struct {
	RestaurantID   string         `json:"restaurant_id"`
	Currency       string         `json:"currency"`
	AvailableCents int64          `json:"available_cents"`
	PendingCents   int64          `json:"pending_cents"`
	TotalCents     int64          `json:"total_cents"`
	LastEventAt    *time.Time     `json:"last_event_at"`
	Meta           map[string]any `json:"meta"`
}

// GetBalance returns the derived (available, pending, total) view for one
// (restaurant, currency). A restaurant with no entries reads as all zeros.
func GetBalance(store repositories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurantID := chi.URLParam(r, "restaurantID")
		if err := restaurant.ValidateID(restaurantID); err != nil {
			writeError(w, r, apperr.Validation(err.Error(), nil))
			return
		}
		currency := r.URL.Query().Get("currency")
		if currency == "" {
			currency = event.DefaultCurrency
		}

		b, err := balance.NewCalculator(store.Ledger()).Balance(r.Context(), restaurantID, currency)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, balanceResponse{
			RestaurantID:   b.RestaurantID,
			Currency:       b.Currency,
			AvailableCents: b.AvailableCents,
			PendingCents:   b.PendingCents,
			TotalCents:     b.TotalCents,
			LastEventAt:    b.LastEventAt,
			Meta:           responseMeta(),
		})
	}
}
