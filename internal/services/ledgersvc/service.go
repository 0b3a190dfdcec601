// Package ledgersvc translates business events into signed, immutable
// ledger postings.
package ledgersvc

import (
	"context"
	"fmt"
	"time"

	"restoledger/internal/domain/ledger"
	"restoledger/internal/metrics"
	"restoledger/internal/store/repositories"
)

// MaturityDays is the hold window before a sale becomes spendable. All
// reductions (commission, refund, payout reserve) apply immediately.
const MaturityDays = 7

type Service struct {
	ledger repositories.LedgerRepository
}

func NewService(ledgerRepo repositories.LedgerRepository) *Service {
	return &Service{ledger: ledgerRepo}
}

// CreateSaleEntries posts the sale (maturing at occurred_at + 7 days) and,
// when a fee was charged, the immediately-applied commission.
func (s *Service) CreateSaleEntries(ctx context.Context, restaurantID, eventID string, amountCents, feeCents int64, occurredAt time.Time, currency string) error {
	availableAt := occurredAt.AddDate(0, 0, MaturityDays)

	sale := &ledger.Entry{
		RestaurantID:   restaurantID,
		AmountCents:    amountCents,
		Currency:       currency,
		Type:           ledger.TypeSale,
		Description:    fmt.Sprintf("Sale from event %s", eventID),
		RelatedEventID: &eventID,
		AvailableAt:    &availableAt,
	}
	if err := s.ledger.CreateEntry(ctx, sale); err != nil {
		return err
	}
	metrics.LedgerEntriesTotal.WithLabelValues(string(ledger.TypeSale)).Inc()

	if feeCents > 0 {
		commission := &ledger.Entry{
			RestaurantID:   restaurantID,
			AmountCents:    -feeCents,
			Currency:       currency,
			Type:           ledger.TypeCommission,
			Description:    fmt.Sprintf("Commission for event %s", eventID),
			RelatedEventID: &eventID,
		}
		if err := s.ledger.CreateEntry(ctx, commission); err != nil {
			return err
		}
		metrics.LedgerEntriesTotal.WithLabelValues(string(ledger.TypeCommission)).Inc()
	}
	return nil
}

// CreateRefundEntry posts an immediately-applied refund debit.
func (s *Service) CreateRefundEntry(ctx context.Context, restaurantID, eventID string, amountCents int64, currency string) error {
	refund := &ledger.Entry{
		RestaurantID:   restaurantID,
		AmountCents:    -amountCents,
		Currency:       currency,
		Type:           ledger.TypeRefund,
		Description:    fmt.Sprintf("Refund from event %s", eventID),
		RelatedEventID: &eventID,
	}
	if err := s.ledger.CreateEntry(ctx, refund); err != nil {
		return err
	}
	metrics.LedgerEntriesTotal.WithLabelValues(string(ledger.TypeRefund)).Inc()
	return nil
}

// CreatePayoutEntry posts the reserving debit that removes the payout amount
// from the available balance.
func (s *Service) CreatePayoutEntry(ctx context.Context, restaurantID string, payoutID, amountCents int64, currency string) error {
	reserve := &ledger.Entry{
		RestaurantID:    restaurantID,
		AmountCents:     -amountCents,
		Currency:        currency,
		Type:            ledger.TypePayoutReserve,
		Description:     fmt.Sprintf("Payout reserve for payout %d", payoutID),
		RelatedPayoutID: &payoutID,
	}
	if err := s.ledger.CreateEntry(ctx, reserve); err != nil {
		return err
	}
	metrics.LedgerEntriesTotal.WithLabelValues(string(ledger.TypePayoutReserve)).Inc()
	return nil
}
