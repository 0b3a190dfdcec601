package payout

import (
	"testing"
	"time"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusCreated, StatusProcessing, true},
		{StatusCreated, StatusPaid, true},
		{StatusCreated, StatusFailed, true},
		{StatusProcessing, StatusPaid, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessing, StatusCreated, false},
		{StatusPaid, StatusFailed, false},
		{StatusPaid, StatusProcessing, false},
		{StatusFailed, StatusPaid, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if StatusCreated.Terminal() || StatusProcessing.Terminal() {
		t.Error("created and processing are not terminal")
	}
	if !StatusPaid.Terminal() || !StatusFailed.Terminal() {
		t.Error("paid and failed are terminal")
	}
}

func TestMarkPaid(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	p := &Payout{ID: 1, Status: StatusCreated}
	if err := p.MarkPaid(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusPaid || p.PaidAt == nil || !p.PaidAt.Equal(now) {
		t.Fatalf("paid transition did not stick: %+v", p)
	}

	if err := p.MarkPaid(now); err == nil {
		t.Fatal("marking a paid payout paid again should fail")
	}
}

func TestMarkFailed(t *testing.T) {
	p := &Payout{ID: 1, Status: StatusProcessing}
	if err := p.MarkFailed(""); err == nil {
		t.Fatal("empty failure reason should be rejected")
	}
	if err := p.MarkFailed("bank rejected transfer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusFailed || p.FailureReason != "bank rejected transfer" {
		t.Fatalf("failed transition did not stick: %+v", p)
	}
	if err := p.MarkFailed("again"); err == nil {
		t.Fatal("failed payout cannot fail again")
	}
}
