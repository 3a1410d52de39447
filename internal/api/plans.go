package api

import (
	"context"
	"fmt"
)

// Plan is a purchasable distribution tier.
type Plan struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	PriceCents     int    `json:"price_cents"`
	RecruiterCount int    `json:"recruiter_count"`
	ComingSoon     bool   `json:"coming_soon"`
}

// Recipient ceilings per tier. The free tier rides on the freemium endpoint;
// everything else goes through checkout.
const (
	FreeTierRecipients = 11

	// DailySendLimit caps how many recruiters one campaign contacts per day;
	// larger plans drain over multiple days.
	DailySendLimit = 50

	// PremiumPriceCents is the top-tier price ($149).
	PremiumPriceCents = 14900
)

// DripWaveDays are the scheduled offsets, in days, of the three follow-up
// waves a campaign sends.
var DripWaveDays = []int{1, 4, 8}

// DefaultPlans is the built-in catalog, used when the backend catalog is
// unreachable and as the source of truth for recipient ceilings.
var DefaultPlans = []Plan{
	{Key: "free", Name: "Free Trial", PriceCents: 0, RecruiterCount: FreeTierRecipients},
	{Key: "starter", Name: "Starter", PriceCents: 2900, RecruiterCount: 250},
	{Key: "basic", Name: "Basic", PriceCents: 4900, RecruiterCount: 500},
	{Key: "professional", Name: "Professional", PriceCents: 7900, RecruiterCount: 750},
	{Key: "growth", Name: "Growth", PriceCents: 9900, RecruiterCount: 1000},
	{Key: "advanced", Name: "Advanced", PriceCents: 12400, RecruiterCount: 1250},
	{Key: "premium", Name: "Premium", PriceCents: PremiumPriceCents, RecruiterCount: 1500},
}

// DeliveryDays reports how many days a campaign of the given size takes to
// drain at the daily send cap.
func DeliveryDays(recipients int) int {
	if recipients <= 0 {
		return 0
	}
	return (recipients + DailySendLimit - 1) / DailySendLimit
}

// PlanByKey finds a plan in the catalog.
func PlanByKey(plans []Plan, key string) (Plan, error) {
	for _, p := range plans {
		if p.Key == key {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("unknown plan: %q", key)
}

// PublicPlans fetches the live catalog, falling back to the built-in one
// when the backend cannot serve it.
func (c *Client) PublicPlans(ctx context.Context) ([]Plan, error) {
	var resp struct {
		Plans []Plan `json:"plans"`
	}
	if err := c.Get(ctx, "/api/plans/public", &resp); err != nil {
		if Temporary(err) {
			return DefaultPlans, nil
		}
		return nil, err
	}
	if len(resp.Plans) == 0 {
		return DefaultPlans, nil
	}
	return resp.Plans, nil
}
