package models

// Plan name constants.
const (
	PlanFree       = "free"
	PlanStarter    = "starter"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// UnlimitedQuota is the sentinel for plans without a monthly cap.
const UnlimitedQuota = -1

// Plan describes a subscription tier: a monthly test-generation quota
// and a team seat limit.
type Plan struct {
	Name         string `json:"name" yaml:"name"`
	MonthlyTests int    `json:"monthly_tests" yaml:"monthly_tests"`
	TeamSeats    int    `json:"team_seats" yaml:"team_seats"`
	PriceCents   int    `json:"price_cents" yaml:"price_cents"`
	PriceDisplay string `json:"price_display" yaml:"price_display"`
}

// Unlimited reports whether the plan has no monthly test cap.
func (p *Plan) Unlimited() bool {
	return p.MonthlyTests == UnlimitedQuota
}

// DefaultPlans returns the built-in plan catalog, used when no
// plans.yaml override is configured.
func DefaultPlans() map[string]Plan {
	return map[string]Plan{
		PlanFree:       {Name: PlanFree, MonthlyTests: 100, TeamSeats: 1, PriceCents: 0, PriceDisplay: "$0"},
		PlanStarter:    {Name: PlanStarter, MonthlyTests: 1000, TeamSeats: 5, PriceCents: 2900, PriceDisplay: "$29"},
		PlanPro:        {Name: PlanPro, MonthlyTests: 10000, TeamSeats: 20, PriceCents: 9900, PriceDisplay: "$99"},
		PlanEnterprise: {Name: PlanEnterprise, MonthlyTests: UnlimitedQuota, TeamSeats: UnlimitedQuota, PriceCents: 49900, PriceDisplay: "$499"},
	}
}

// UsageSummary reports a user's generation usage for the current period.
type UsageSummary struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}
