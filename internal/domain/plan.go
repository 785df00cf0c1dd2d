package domain

// Unlimited is the sentinel limit value meaning "no ceiling". It must never be
// compared as a numeric bound.
const Unlimited = -1

// Plan is a subscription tier defining usage ceilings for a user. Catalog rows
// are immutable reference data; a user references exactly one Plan.
type Plan struct {
	ID          string
	Name        string
	MaxProjects int
	MaxActions  int
	MaxDetails  int
}

// Stable catalog ids so reseeding upserts instead of duplicating rows.
const (
	PlanFreemiumID     = "7c2f1a4e-0b7d-4f3a-9c6e-1d2a8b5e4f01"
	PlanStarterID      = "7c2f1a4e-0b7d-4f3a-9c6e-1d2a8b5e4f02"
	PlanProfessionalID = "7c2f1a4e-0b7d-4f3a-9c6e-1d2a8b5e4f03"
	PlanEnterpriseID   = "7c2f1a4e-0b7d-4f3a-9c6e-1d2a8b5e4f04"
)

// CatalogTiers returns the canonical plan catalog in ascending tier order.
func CatalogTiers() []Plan {
	return []Plan{
		{ID: PlanFreemiumID, Name: "Freemium", MaxProjects: 1, MaxActions: 5, MaxDetails: 10},
		{ID: PlanStarterID, Name: "Starter", MaxProjects: 3, MaxActions: 15, MaxDetails: 30},
		{ID: PlanProfessionalID, Name: "Professional", MaxProjects: 10, MaxActions: 50, MaxDetails: 100},
		{ID: PlanEnterpriseID, Name: "Enterprise", MaxProjects: Unlimited, MaxActions: Unlimited, MaxDetails: Unlimited},
	}
}

// WithinLimit reports whether existing+requested fits under limit, treating the
// Unlimited sentinel as always allowed.
func WithinLimit(limit, existing, requested int) bool {
	if limit == Unlimited {
		return true
	}
	return existing+requested <= limit
}

// RemainingBudget returns how many more items the limit allows given the
// existing count. Unlimited limits return Unlimited; exhausted limits return 0.
func RemainingBudget(limit, existing int) int {
	if limit == Unlimited {
		return Unlimited
	}
	remaining := limit - existing
	if remaining < 0 {
		return 0
	}
	return remaining
}
