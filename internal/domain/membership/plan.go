package membership

import (
	"sort"
	"time"
)

type Plan struct {
	Tier     Tier   `json:"tier"`
	Name     string `json:"name"`
	PriceUSD int    `json:"price"`
}

var plans = map[Tier]Plan{
	TierRegular: {Tier: TierRegular, Name: "Regular", PriceUSD: 15},
	TierPro:     {Tier: TierPro, Name: "Pro", PriceUSD: 25},
	TierVIP:     {Tier: TierVIP, Name: "VIP", PriceUSD: 49},
}

func PlanFor(t Tier) (Plan, bool) {
	p, ok := plans[t]
	return p, ok
}

// Plans lists the purchasable plans from cheapest to most expensive.
func Plans() []Plan {
	out := make([]Plan, 0, len(plans))
	for _, p := range plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tier.Rank() < out[j].Tier.Rank() })
	return out
}

// ExpiresAt is one calendar month after the purchase.
func ExpiresAt(purchasedAt time.Time) time.Time {
	return purchasedAt.UTC().AddDate(0, 1, 0)
}
