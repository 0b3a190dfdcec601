// Package payouts materializes payouts that reserve available balance
// against future bank disbursement.
package payouts

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"restoledger/internal/apperr"
	"restoledger/internal/domain/ledger"
	"restoledger/internal/domain/payout"
	"restoledger/internal/metrics"
	"restoledger/internal/services/ledgersvc"
	"restoledger/internal/store/repositories"
)

// MinPayoutAmount is the floor for the per-restaurant path, sized to cover
// processing costs (100.00 PEN). The batch path takes its threshold from the
// request instead.
const MinPayoutAmount = 10000

// Generator creates payouts. Build it around a tx-bound RepoSet: the
// lock-compute-insert sequence for each restaurant must be atomic.
type Generator struct {
	repos  repositories.RepoSet
	ledger *ledgersvc.Service
}

func NewGenerator(repos repositories.RepoSet) *Generator {
	return &Generator{repos: repos, ledger: ledgersvc.NewService(repos.Ledger())}
}

// RunBatch creates payouts for every eligible active restaurant in the
// currency. Restaurants with a pending payout, an existing payout for as_of,
// or a locked balance below minAmount are skipped. Returns the number of
// payouts created.
func (g *Generator) RunBatch(ctx context.Context, currency string, asOf time.Time, minAmount int64) (int, error) {
	restaurantIDs, err := g.repos.Restaurants().ListActiveIDs(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, restaurantID := range restaurantIDs {
		pending, err := g.repos.Payouts().HasPending(ctx, restaurantID, currency)
		if err != nil {
			return created, err
		}
		if pending {
			continue
		}

		alreadyRan, err := g.repos.Payouts().ExistsForAsOf(ctx, restaurantID, currency, asOf)
		if err != nil {
			return created, err
		}
		if alreadyRan {
			continue
		}

		balance, err := g.repos.Ledger().AvailableBalanceForUpdate(ctx, restaurantID, currency)
		if err != nil {
			return created, err
		}
		if balance < minAmount {
			continue
		}

		ok, err := g.createPayout(ctx, restaurantID, currency, balance, asOf)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// GenerateForRestaurant is the single-restaurant path: rejects when a payout
// is already pending or the locked balance is below MinPayoutAmount,
// otherwise creates the payout dated today. Returns the payout id.
func (g *Generator) GenerateForRestaurant(ctx context.Context, restaurantID, currency string) (int64, error) {
	log.Info().Str("restaurant_id", restaurantID).Str("currency", currency).Msg("starting payout generation")

	pending, err := g.repos.Payouts().HasPending(ctx, restaurantID, currency)
	if err != nil {
		return 0, err
	}
	if pending {
		log.Warn().Str("restaurant_id", restaurantID).Str("currency", currency).Msg("pending payouts exist, rejecting new payout")
		return 0, apperr.PendingPayout(restaurantID)
	}

	balance, err := g.repos.Ledger().AvailableBalanceForUpdate(ctx, restaurantID, currency)
	if err != nil {
		return 0, err
	}
	log.Info().
		Str("restaurant_id", restaurantID).
		Str("currency", currency).
		Int64("available_cents", balance).
		Msg("available balance locked")

	if balance < MinPayoutAmount {
		log.Warn().
			Str("restaurant_id", restaurantID).
			Int64("available_cents", balance).
			Int64("min_cents", MinPayoutAmount).
			Msg("insufficient balance for payout")
		return 0, apperr.InsufficientBalance(restaurantID, balance, MinPayoutAmount)
	}

	p := &payout.Payout{
		RestaurantID: restaurantID,
		AmountCents:  balance,
		Currency:     currency,
		AsOf:         time.Now().UTC().Truncate(24 * time.Hour),
	}
	if _, err := g.insertWithBreakdown(ctx, p); err != nil {
		return 0, err
	}

	total, err := g.repos.Ledger().TotalBalance(ctx, currency)
	if err == nil {
		metrics.BalanceTotal.Set(float64(total))
	}

	log.Info().
		Int64("payout_id", p.ID).
		Str("restaurant_id", restaurantID).
		Str("currency", currency).
		Int64("amount_cents", balance).
		Msg("payout created")
	return p.ID, nil
}

func (g *Generator) createPayout(ctx context.Context, restaurantID, currency string, balance int64, asOf time.Time) (bool, error) {
	p := &payout.Payout{
		RestaurantID: restaurantID,
		AmountCents:  balance,
		Currency:     currency,
		AsOf:         asOf,
	}
	return g.insertWithBreakdown(ctx, p)
}

// insertWithBreakdown writes the payout row, its item breakdown and the
// reserving ledger entry. Returns false when the (restaurant, currency,
// as_of) uniqueness guard suppressed the insert.
func (g *Generator) insertWithBreakdown(ctx context.Context, p *payout.Payout) (bool, error) {
	inserted, err := g.repos.Payouts().Create(ctx, p)
	if err != nil {
		return false, err
	}
	if !inserted {
		log.Info().
			Str("restaurant_id", p.RestaurantID).
			Str("currency", p.Currency).
			Time("as_of", p.AsOf).
			Msg("payout already exists for as_of, skipping")
		return false, nil
	}

	items, err := g.breakdownItems(ctx, p.RestaurantID, p.Currency)
	if err != nil {
		return false, err
	}
	if len(items) > 0 {
		if err := g.repos.Payouts().CreateItems(ctx, p.ID, items); err != nil {
			return false, err
		}
		p.Items = items
	}

	if err := g.ledger.CreatePayoutEntry(ctx, p.RestaurantID, p.ID, p.AmountCents, p.Currency); err != nil {
		return false, err
	}

	metrics.PayoutsTotal.WithLabelValues(string(payout.StatusCreated)).Inc()
	return true, nil
}

// breakdownItems maps matured ledger totals onto payout lines: sale →
// net_sales, commission → fees, refund → refunds. Zero totals are dropped.
func (g *Generator) breakdownItems(ctx context.Context, restaurantID, currency string) ([]payout.Item, error) {
	totals, err := g.repos.Ledger().BreakdownByType(ctx, restaurantID, currency)
	if err != nil {
		return nil, err
	}

	var items []payout.Item
	mapping := []struct {
		entry ledger.EntryType
		item  payout.ItemType
	}{
		{ledger.TypeSale, payout.ItemNetSales},
		{ledger.TypeCommission, payout.ItemFees},
		{ledger.TypeRefund, payout.ItemRefunds},
	}
	for _, m := range mapping {
		if amount, ok := totals[m.entry]; ok && amount != 0 {
			items = append(items, payout.Item{Type: m.item, AmountCents: amount})
		}
	}
	return items, nil
}
