// Package processor handles idempotent ingestion of processor events and the
// ledger side effects they imply.
package processor

import (
	"context"

	"github.com/rs/zerolog/log"

	"restoledger/internal/domain/event"
	"restoledger/internal/metrics"
	"restoledger/internal/services/ledgersvc"
	"restoledger/internal/store/repositories"
)

// Processor orchestrates one event-processing transaction. Build it around a
// tx-bound RepoSet so every side effect commits or rolls back together.
type Processor struct {
	repos  repositories.RepoSet
	ledger *ledgersvc.Service
}

func New(repos repositories.RepoSet) *Processor {
	return &Processor{repos: repos, ledger: ledgersvc.NewService(repos.Ledger())}
}

// Process stores the event exactly once and applies its ledger postings.
// Returns the stored event and whether this call was the first observation.
// At most one set of side effects per event_id: postings happen only on the
// call whose insert actually landed.
func (p *Processor) Process(ctx context.Context, in *event.ProcessorEvent) (*event.ProcessorEvent, bool, error) {
	if _, _, err := p.repos.Restaurants().GetOrCreate(ctx, in.RestaurantID); err != nil {
		return nil, false, err
	}

	isNew, err := p.repos.Events().Insert(ctx, in)
	if err != nil {
		return nil, false, err
	}
	if !isNew {
		log.Info().Str("event_id", in.EventID).Msg("idempotent hit: event already processed")
		return in, false, nil
	}

	log.Info().
		Str("event_id", in.EventID).
		Str("event_type", string(in.Type)).
		Str("restaurant_id", in.RestaurantID).
		Msg("processing new event")

	switch in.Type {
	case event.TypeChargeSucceeded:
		err = p.ledger.CreateSaleEntries(ctx, in.RestaurantID, in.EventID, in.AmountCents, in.FeeCents, in.OccurredAt, in.Currency)
	case event.TypeRefundSucceeded:
		err = p.ledger.CreateRefundEntry(ctx, in.RestaurantID, in.EventID, in.AmountCents, in.Currency)
	case event.TypePayoutPaid:
		err = p.reconcilePayout(ctx, in)
	}
	if err != nil {
		return nil, false, err
	}

	metrics.EventsTotal.WithLabelValues(string(in.Type)).Inc()
	p.refreshBalanceGauge(ctx, in.Currency)
	return in, true, nil
}

// reconcilePayout transitions the referenced payout to paid. A missing or
// unknown payout reference is logged and skipped: the event itself is still
// stored, so a later re-run of the processor feed stays idempotent.
func (p *Processor) reconcilePayout(ctx context.Context, in *event.ProcessorEvent) error {
	payoutID, ok := in.PayoutID()
	if !ok {
		log.Warn().Str("event_id", in.EventID).Msg("payout_paid event without metadata.payout_id, skipping")
		return nil
	}

	paid, err := p.repos.Payouts().MarkPaid(ctx, payoutID)
	if err != nil {
		return err
	}
	if !paid {
		log.Warn().
			Str("event_id", in.EventID).
			Int64("payout_id", payoutID).
			Msg("payout_paid event for unknown or terminal payout, skipping")
		return nil
	}

	metrics.PayoutsTotal.WithLabelValues("paid").Inc()
	log.Info().Int64("payout_id", payoutID).Str("event_id", in.EventID).Msg("payout marked paid")
	return nil
}

func (p *Processor) refreshBalanceGauge(ctx context.Context, currency string) {
	total, err := p.repos.Ledger().TotalBalance(ctx, currency)
	if err != nil {
		log.Warn().Err(err).Str("currency", currency).Msg("balance gauge refresh failed")
		return
	}
	metrics.BalanceTotal.Set(float64(total))
}
