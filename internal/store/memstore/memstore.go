// Package memstore implements repositories.Store in memory. It backs unit
// tests that exercise service and handler logic without a database; WithTx
// runs the callback directly and does not roll back on error.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"restoledger/internal/domain/event"
	"restoledger/internal/domain/ledger"
	"restoledger/internal/domain/payout"
	"restoledger/internal/domain/restaurant"
	"restoledger/internal/store/repositories"
)

type Store struct {
	mu sync.Mutex

	// Now supplies the clock for maturity checks and timestamps. Tests pin
	// it to a fixed instant.
	Now func() time.Time

	restaurants map[string]*restaurant.Restaurant
	events      map[string]*event.ProcessorEvent
	entries     []*ledger.Entry
	payouts     map[int64]*payout.Payout
	items       map[int64][]payout.Item

	nextEventID  int64
	nextEntryID  int64
	nextPayoutID int64
	nextItemID   int64
}

var _ repositories.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		Now:         time.Now,
		restaurants: make(map[string]*restaurant.Restaurant),
		events:      make(map[string]*event.ProcessorEvent),
		payouts:     make(map[int64]*payout.Payout),
		items:       make(map[int64][]payout.Item),
	}
}

func (s *Store) Restaurants() repositories.RestaurantRepository { return restaurantRepo{s} }
func (s *Store) Events() repositories.EventRepository           { return eventRepo{s} }
func (s *Store) Ledger() repositories.LedgerRepository          { return ledgerRepo{s} }
func (s *Store) Payouts() repositories.PayoutRepository         { return payoutRepo{s} }

func (s *Store) WithTx(_ context.Context, fn func(repositories.RepoSet) error) error {
	return fn(s)
}

// Entries returns a snapshot of every ledger posting, ordered by id.
func (s *Store) Entries() []ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	return out
}

type restaurantRepo struct{ s *Store }

func (r restaurantRepo) GetOrCreate(_ context.Context, id string) (*restaurant.Restaurant, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.restaurants[id]; ok {
		cp := *existing
		return &cp, false, nil
	}
	now := r.s.Now()
	rest := &restaurant.Restaurant{ID: id, Name: id, IsActive: true, CreatedAt: now, UpdatedAt: now}
	r.s.restaurants[id] = rest
	cp := *rest
	return &cp, true, nil
}

func (r restaurantRepo) GetByID(_ context.Context, id string) (*restaurant.Restaurant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.restaurants[id]
	if !ok {
		return nil, nil
	}
	cp := *existing
	return &cp, nil
}

func (r restaurantRepo) ListActiveIDs(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id, rest := range r.s.restaurants {
		if rest.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type eventRepo struct{ s *Store }

func (r eventRepo) Insert(_ context.Context, e *event.ProcessorEvent) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if stored, ok := r.s.events[e.EventID]; ok {
		*e = *stored
		return false, nil
	}
	r.s.nextEventID++
	e.ID = r.s.nextEventID
	e.CreatedAt = r.s.Now()
	cp := *e
	r.s.events[e.EventID] = &cp
	return true, nil
}

func (r eventRepo) GetByEventID(_ context.Context, eventID string) (*event.ProcessorEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.events[eventID]
	if !ok {
		return nil, nil
	}
	cp := *stored
	return &cp, nil
}

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) CreateEntry(_ context.Context, e *ledger.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextEntryID++
	e.ID = r.s.nextEntryID
	e.CreatedAt = r.s.Now()
	cp := *e
	r.s.entries = append(r.s.entries, &cp)
	return nil
}

func (r ledgerRepo) AvailableBalanceForUpdate(_ context.Context, restaurantID, currency string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.Now()
	var sum int64
	for _, e := range r.s.entries {
		if e.RestaurantID == restaurantID && e.Currency == currency && e.Available(now) {
			sum += e.AmountCents
		}
	}
	return sum, nil
}

func (r ledgerRepo) BalanceSummary(_ context.Context, restaurantID, currency string) (int64, int64, *time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.Now()
	var available, pending int64
	var last *time.Time
	for _, e := range r.s.entries {
		if e.RestaurantID != restaurantID || e.Currency != currency {
			continue
		}
		if e.Available(now) {
			available += e.AmountCents
		} else {
			pending += e.AmountCents
		}
		if e.RelatedEventID != nil && (last == nil || e.CreatedAt.After(*last)) {
			t := e.CreatedAt
			last = &t
		}
	}
	return available, pending, last, nil
}

func (r ledgerRepo) TotalBalance(_ context.Context, currency string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, e := range r.s.entries {
		if e.Currency == currency {
			sum += e.AmountCents
		}
	}
	return sum, nil
}

func (r ledgerRepo) BreakdownByType(_ context.Context, restaurantID, currency string) (map[ledger.EntryType]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.Now()
	totals := make(map[ledger.EntryType]int64)
	for _, e := range r.s.entries {
		if e.RestaurantID != restaurantID || e.Currency != currency || !e.Available(now) {
			continue
		}
		switch e.Type {
		case ledger.TypeSale, ledger.TypeCommission, ledger.TypeRefund:
			totals[e.Type] += e.AmountCents
		}
	}
	return totals, nil
}

type payoutRepo struct{ s *Store }

func asOfKey(t time.Time) string { return t.Format("2006-01-02") }

func (r payoutRepo) Create(_ context.Context, p *payout.Payout) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.payouts {
		if existing.RestaurantID == p.RestaurantID &&
			existing.Currency == p.Currency &&
			asOfKey(existing.AsOf) == asOfKey(p.AsOf) {
			return false, nil
		}
	}
	r.s.nextPayoutID++
	p.ID = r.s.nextPayoutID
	p.Status = payout.StatusCreated
	p.CreatedAt = r.s.Now()
	cp := *p
	r.s.payouts[p.ID] = &cp
	return true, nil
}

func (r payoutRepo) GetByID(_ context.Context, id int64) (*payout.Payout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.payouts[id]
	if !ok {
		return nil, nil
	}
	cp := *stored
	cp.Items = append([]payout.Item(nil), r.s.items[id]...)
	return &cp, nil
}

func (r payoutRepo) HasPending(_ context.Context, restaurantID, currency string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payouts {
		if p.RestaurantID == restaurantID && p.Currency == currency && !p.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

func (r payoutRepo) ExistsForAsOf(_ context.Context, restaurantID, currency string, asOf time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payouts {
		if p.RestaurantID == restaurantID && p.Currency == currency && asOfKey(p.AsOf) == asOfKey(asOf) {
			return true, nil
		}
	}
	return false, nil
}

func (r payoutRepo) CreateItems(_ context.Context, payoutID int64, items []payout.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range items {
		r.s.nextItemID++
		items[i].ID = r.s.nextItemID
		items[i].PayoutID = payoutID
	}
	r.s.items[payoutID] = append(r.s.items[payoutID], items...)
	return nil
}

func (r payoutRepo) MarkPaid(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payouts[id]
	if !ok || p.Status.Terminal() {
		return false, nil
	}
	now := r.s.Now()
	p.Status = payout.StatusPaid
	p.PaidAt = &now
	return true, nil
}

func (r payoutRepo) MarkFailed(_ context.Context, id int64, reason string) (bool, error) {
	if reason == "" {
		return false, fmt.Errorf("failure reason is required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payouts[id]
	if !ok || p.Status.Terminal() {
		return false, nil
	}
	p.Status = payout.StatusFailed
	p.FailureReason = reason
	return true, nil
}
