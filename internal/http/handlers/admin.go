package handlers

import (
	"encoding/json"
	"net/http"

	"restoledger/internal/apperr"
	"restoledger/internal/domain/event"
	"restoledger/internal/domain/restaurant"
	"restoledger/internal/services/payouts"
	"restoledger/internal/store/repositories"
)

type adminPayoutRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Currency     string `json:"currency"`
}

// AdminCreatePayout is the synchronous per-restaurant payout path. Unlike
// the batch run it answers in-band: 409 when a payout is already pending or
// the locked balance is below the service minimum.
func AdminCreatePayout(store repositories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in adminPayoutRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, r, apperr.Validation("cannot parse request body", nil))
			return
		}
		if err := restaurant.ValidateID(in.RestaurantID); err != nil {
			writeError(w, r, apperr.Validation(err.Error(), nil))
			return
		}
		if in.Currency == "" {
			in.Currency = event.DefaultCurrency
		}

		var payoutID int64
		err := store.WithTx(r.Context(), func(repos repositories.RepoSet) error {
			var txErr error
			payoutID, txErr = payouts.NewGenerator(repos).GenerateForRestaurant(r.Context(), in.RestaurantID, in.Currency)
			return txErr
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"payout_id":     payoutID,
			"restaurant_id": in.RestaurantID,
			"currency":      in.Currency,
			"meta":          responseMeta(),
		})
	}
}
