// Package membership holds the tier hierarchy, the daily submission quota and
// the paid plans that gate access to jobs.
package membership

import (
	"errors"
	"strings"
	"time"
)

type Tier string

const (
	TierNone    Tier = "none"
	TierRegular Tier = "regular"
	TierPro     Tier = "pro"
	TierVIP     Tier = "vip"
)

// Unlimited is the DailyLimit of tiers without a cap.
const Unlimited = -1

var ErrUnknownTier = errors.New("unknown membership tier")

var tierRank = map[Tier]int{
	TierNone:    0,
	TierRegular: 1,
	TierPro:     2,
	TierVIP:     3,
}

func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tierRank[t]; !ok {
		return "", ErrUnknownTier
	}
	return t, nil
}

func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// Rank orders tiers; unknown tiers rank below none.
func (t Tier) Rank() int {
	r, ok := tierRank[t]
	if !ok {
		return -1
	}
	return r
}

// Covers reports whether a member of tier t may view or submit to a job that
// requires the given tier.
func (t Tier) Covers(required Tier) bool {
	if !t.Valid() || !required.Valid() {
		return false
	}
	return t.Rank() >= required.Rank()
}

func (t Tier) DailyLimit() int {
	switch t {
	case TierVIP:
		return Unlimited
	case TierPro:
		return 6
	case TierRegular:
		return 4
	default:
		return 0
	}
}

type Status string

const (
	StatusNone           Status = "none"
	StatusPendingPayment Status = "pending_payment"
	StatusActive         Status = "active"
	StatusExpired        Status = "expired"
)

// QuotaDay truncates t to the UTC calendar day used for the daily counter.
func QuotaDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// UsedToday returns the effective counter: a counter stamped on an earlier
// day has already rolled over.
func UsedToday(used int, lastReset, now time.Time) int {
	if QuotaDay(lastReset).Before(QuotaDay(now)) {
		return 0
	}
	if used < 0 {
		return 0
	}
	return used
}

// Remaining returns how many submissions are left today, or Unlimited.
func Remaining(t Tier, used int, lastReset, now time.Time) int {
	limit := t.DailyLimit()
	if limit == Unlimited {
		return Unlimited
	}
	left := limit - UsedToday(used, lastReset, now)
	if left < 0 {
		return 0
	}
	return left
}
