package paywall

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeberg.org/explainer/server/internal/ledger"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestGate(t *testing.T) (*Gate, *ledger.Ledger, *ledger.MemoryStore, *ledger.User) {
	t.Helper()

	store := ledger.NewMemoryStore()
	store.SetClock(func() time.Time { return baseTime })

	l := ledger.New(store)
	l.SetClock(func() time.Time { return baseTime })

	user, err := store.FindOrCreateByEmail(context.Background(), "reader@example.com")
	if err != nil {
		t.Fatalf("failed to provision user: %v", err)
	}

	return New(l), l, store, user
}

func TestDecide_GrantsBeforeChecking(t *testing.T) {
	gate, l, _, user := newTestGate(t)
	ctx := context.Background()

	// fresh user, zero balance: the hourly grant alone covers the request
	decision, err := gate.Decide(ctx, user.ID, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.Allowed {
		t.Error("request should be allowed after the hourly grant")
	}
	if !decision.HourlyGranted {
		t.Error("decision should record that the grant was issued")
	}
	if decision.CurrentCredits != 1 {
		t.Errorf("current credits = %v, want 1", decision.CurrentCredits)
	}

	// the caller debits after the protected action succeeds
	debited, err := l.Debit(ctx, user.ID, 1.0, ledger.UsageMetadata{Provider: "anthropic"})
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if debited.Credits != 0 {
		t.Errorf("credits = %v, want 0 after debit", debited.Credits)
	}
}

func TestDecide_DeniedWithWaitTime(t *testing.T) {
	gate, l, store, user := newTestGate(t)
	ctx := context.Background()

	// exhaust the hourly grant
	if _, err := l.GrantHourly(ctx, user.ID); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if _, err := l.Debit(ctx, user.ID, 1.0, ledger.UsageMetadata{}); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	// 20 minutes in: no grant available, zero balance
	at := baseTime.Add(20 * time.Minute)
	store.SetClock(func() time.Time { return at })
	l.SetClock(func() time.Time { return at })

	decision, err := gate.Decide(ctx, user.ID, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decision.Allowed {
		t.Error("request should be denied with no balance and no grant")
	}
	if decision.HourlyGranted {
		t.Error("no grant should be issued during cooldown")
	}
	if decision.CurrentCredits != 0 {
		t.Errorf("current credits = %v, want 0", decision.CurrentCredits)
	}
	if decision.MinutesUntilNextCredit != 40 {
		t.Errorf("minutes until next credit = %d, want 40", decision.MinutesUntilNextCredit)
	}
}

func TestDecide_PurchasedBalanceWithoutGrant(t *testing.T) {
	gate, l, _, user := newTestGate(t)
	ctx := context.Background()

	// hourly grant consumed, purchased credits remain
	if _, err := l.GrantHourly(ctx, user.ID); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if _, err := l.Debit(ctx, user.ID, 1.0, ledger.UsageMetadata{}); err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if _, err := l.Credit(ctx, user.ID, 100, "Standard Pack"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	decision, err := gate.Decide(ctx, user.ID, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.Allowed {
		t.Error("request should be allowed on purchased balance")
	}
	if decision.HourlyGranted {
		t.Error("no grant should be issued during cooldown")
	}
	if decision.CurrentCredits != 100 {
		t.Errorf("current credits = %v, want 100", decision.CurrentCredits)
	}
}

func TestDecide_FractionalGrantStillClaimed(t *testing.T) {
	gate, _, _, user := newTestGate(t)
	ctx := context.Background()

	// BYOLLM at 0.2: the full hourly credit is claimed even though only a
	// fraction is needed (documented grant-before-check policy)
	decision, err := gate.Decide(ctx, user.ID, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.Allowed {
		t.Error("request should be allowed")
	}
	if !decision.HourlyGranted {
		t.Error("hourly grant should be claimed first")
	}
	if decision.CurrentCredits != 1 {
		t.Errorf("current credits = %v, want 1 (whole credit granted)", decision.CurrentCredits)
	}
}

func TestDecide_UnknownUser(t *testing.T) {
	gate, _, _, _ := newTestGate(t)

	_, err := gate.Decide(context.Background(), "no-such-user", 1.0)
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("Decide = %v, want ErrNotFound", err)
	}
}

func TestDecide_RejectsNonPositiveCost(t *testing.T) {
	gate, _, _, user := newTestGate(t)

	for _, cost := range []float64{0, -1} {
		if _, err := gate.Decide(context.Background(), user.ID, cost); err == nil {
			t.Errorf("Decide(%v) should be rejected", cost)
		}
	}
}
