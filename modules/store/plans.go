package store

// Plan defines the resource quotas attached to a subscription tier.
type Plan struct {
	Type              string `json:"plan_type"`
	MaxProducts       int    `json:"max_products"`
	MaxStorageMB      int    `json:"max_storage_mb"`
	MaxOrdersPerMonth int    `json:"max_orders_per_month"`
}

const (
	PlanBasic      = "basic"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"
)

var plans = map[string]Plan{
	PlanBasic:      {Type: PlanBasic, MaxProducts: 100, MaxStorageMB: 500, MaxOrdersPerMonth: 1000},
	PlanPremium:    {Type: PlanPremium, MaxProducts: 1000, MaxStorageMB: 5000, MaxOrdersPerMonth: 10000},
	PlanEnterprise: {Type: PlanEnterprise, MaxProducts: 100000, MaxStorageMB: 50000, MaxOrdersPerMonth: 1000000},
}

// PlanByType returns the plan definition for a tier name.
func PlanByType(name string) (Plan, bool) {
	p, ok := plans[name]
	return p, ok
}
