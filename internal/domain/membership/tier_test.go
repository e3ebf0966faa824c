package membership

import (
	"errors"
	"testing"
	"time"
)

func TestTier_Covers(t *testing.T) {
	cases := []struct {
		user     Tier
		required Tier
		want     bool
	}{
		{TierNone, TierNone, true},
		{TierNone, TierRegular, false},
		{TierRegular, TierRegular, true},
		{TierRegular, TierPro, false},
		{TierPro, TierRegular, true},
		{TierVIP, TierPro, true},
		{TierVIP, TierVIP, true},
		{Tier("gold"), TierNone, false},
		{TierVIP, Tier("gold"), false},
	}
	for _, c := range cases {
		if got := c.user.Covers(c.required); got != c.want {
			t.Fatalf("%s covers %s: expected %v, got %v", c.user, c.required, c.want, got)
		}
	}
}

func TestTier_DailyLimit(t *testing.T) {
	if TierNone.DailyLimit() != 0 {
		t.Fatalf("none: expected 0")
	}
	if TierRegular.DailyLimit() != 4 {
		t.Fatalf("regular: expected 4")
	}
	if TierPro.DailyLimit() != 6 {
		t.Fatalf("pro: expected 6")
	}
	if TierVIP.DailyLimit() != Unlimited {
		t.Fatalf("vip: expected unlimited")
	}
}

func TestParseTier(t *testing.T) {
	got, err := ParseTier("  PRO ")
	if err != nil || got != TierPro {
		t.Fatalf("expected pro, got %q err=%v", got, err)
	}
	if _, err := ParseTier("platinum"); !errors.Is(err, ErrUnknownTier) {
		t.Fatalf("expected ErrUnknownTier, got %v", err)
	}
}

func TestRemaining_RollsOverOnNewDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	if got := Remaining(TierRegular, 4, yesterday, now); got != 4 {
		t.Fatalf("expected counter to roll over, got %d", got)
	}
	if got := Remaining(TierRegular, 3, now, now); got != 1 {
		t.Fatalf("expected 1 remaining, got %d", got)
	}
	if got := Remaining(TierRegular, 9, now, now); got != 0 {
		t.Fatalf("expected remaining clamped to 0, got %d", got)
	}
	if got := Remaining(TierVIP, 100, now, now); got != Unlimited {
		t.Fatalf("expected unlimited for vip, got %d", got)
	}
	if got := Remaining(TierNone, 0, now, now); got != 0 {
		t.Fatalf("expected 0 for none, got %d", got)
	}
}

func TestPlans_OrderedByTier(t *testing.T) {
	ps := Plans()
	if len(ps) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(ps))
	}
	if ps[0].Tier != TierRegular || ps[1].Tier != TierPro || ps[2].Tier != TierVIP {
		t.Fatalf("unexpected order: %+v", ps)
	}
	if p, ok := PlanFor(TierPro); !ok || p.PriceUSD != 25 {
		t.Fatalf("expected pro plan at 25, got %+v ok=%v", p, ok)
	}
	if _, ok := PlanFor(TierNone); ok {
		t.Fatalf("none is not purchasable")
	}
}

func TestExpiresAt_OneMonth(t *testing.T) {
	bought := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	want := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	if got := ExpiresAt(bought); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
