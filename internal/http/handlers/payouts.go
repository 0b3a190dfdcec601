package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"restoledger/internal/apperr"
	"restoledger/internal/domain/event"
	"restoledger/internal/domain/payout"
	"restoledger/internal/services/payouts"
	"restoledger/internal/store/repositories"
)

const defaultMinAmount = 5000

type runPayoutsRequest struct {
	Currency  string `json:"currency"`
	AsOf      string `json:"as_of"`
	MinAmount *int64 `json:"min_amount"`
}

type payoutItemResponse struct {
	ItemType    string `json:"item_type"`
	AmountCents int64  `json:"amount_cents"`
}

type payoutResponse struct {
	ID            int64                `json:"id"`
	RestaurantID  string               `json:"restaurant_id"`
	AmountCents   int64                `json:"amount_cents"`
	Currency      string               `json:"currency"`
	AsOf          string               `json:"as_of"`
	Status        string               `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	PaidAt        *time.Time           `json:"paid_at"`
	FailureReason string               `json:"failure_reason,omitempty"`
	Items         []payoutItemResponse `json:"items"`
	Meta          map[string]any       `json:"meta"`
}

// RunPayouts schedules the batch generator and answers 202 immediately. The
// runner owns the transaction and the error logging; a failed run leaves the
// database untouched and the caller may simply re-invoke.
func RunPayouts(runner *payouts.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in runPayoutsRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, r, apperr.Validation("cannot parse request body", nil))
			return
		}
		if in.Currency == "" {
			in.Currency = event.DefaultCurrency
		}
		if in.AsOf == "" {
			writeError(w, r, apperr.Validation("as_of is required", nil))
			return
		}
		asOf, err := time.Parse("2006-01-02", in.AsOf)
		if err != nil {
			writeError(w, r, apperr.Validation("as_of must be a YYYY-MM-DD date", nil))
			return
		}
		minAmount := int64(defaultMinAmount)
		if in.MinAmount != nil {
			if *in.MinAmount <= 0 {
				writeError(w, r, apperr.Validation("min_amount must be > 0", nil))
				return
			}
			minAmount = *in.MinAmount
		}

		runner.Enqueue(payouts.BatchJob{Currency: in.Currency, AsOf: asOf, MinAmount: minAmount})

		writeJSON(w, http.StatusAccepted, map[string]any{
			"message":    "Payout process initiated",
			"currency":   in.Currency,
			"as_of":      in.AsOf,
			"min_amount": minAmount,
			"meta":       responseMeta(),
		})
	}
}

// GetPayout returns one payout with its item breakdown.
func GetPayout(store repositories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "payoutID"), 10, 64)
		if err != nil {
			writeError(w, r, apperr.Validation("payout id must be an integer", nil))
			return
		}

		p, err := store.Payouts().GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if p == nil {
			writeError(w, r, apperr.NotFound("Payout not found", map[string]any{"payout_id": id}))
			return
		}

		writeJSON(w, http.StatusOK, toPayoutResponse(p))
	}
}

func toPayoutResponse(p *payout.Payout) payoutResponse {
	items := make([]payoutItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, payoutItemResponse{ItemType: string(it.Type), AmountCents: it.AmountCents})
	}
	return payoutResponse{
		ID:            p.ID,
		RestaurantID:  p.RestaurantID,
		AmountCents:   p.AmountCents,
		Currency:      p.Currency,
		AsOf:          p.AsOf.Format("2006-01-02"),
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		PaidAt:        p.PaidAt,
		FailureReason: p.FailureReason,
		Items:         items,
		Meta:          responseMeta(),
	}
}
