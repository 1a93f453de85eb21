package core

import "fmt"

// Category is one of the fixed expense categories.
type Category string

const (
	Food          Category = "Food"
	Housing       Category = "Housing"
	Transport     Category = "Transport"
	Health        Category = "Health"
	Education     Category = "Education"
	Leisure       Category = "Leisure"
	Clothing      Category = "Clothing"
	Technology    Category = "Technology"
	Travel        Category = "Travel"
	Delivery      Category = "Delivery"
	Subscriptions Category = "Subscriptions"
	Investment    Category = "Investment"
	Other         Category = "Other"
)

// Categories lists every category in declaration order. Ranking ties are
// broken by this order.
var Categories = []Category{
	Food, Housing, Transport, Health, Education, Leisure, Clothing,
	Technology, Travel, Delivery, Subscriptions, Investment, Other,
}

// Bucket groups categories for the summary totals.
type Bucket string

const (
	BucketEssential   Bucket = "essential"
	BucketInvestment  Bucket = "investment"
	BucketVariable    Bucket = "variable"
	BucketSuperfluous Bucket = "superfluous"
)

// BudgetTarget is the share of income a category is expected to take.
type BudgetTarget struct {
	IdealPct float64 `json:"ideal_pct" toml:"ideal"`
	MaxPct   float64 `json:"max_pct" toml:"max"`
	Bucket   Bucket  `json:"bucket" toml:"-"`
}

// FallbackTarget applies to categories without a configured target.
var FallbackTarget = BudgetTarget{IdealPct: 5, MaxPct: 10, Bucket: BucketVariable}

var defaultTargets = map[Category]BudgetTarget{
	Food:          {15, 20, BucketEssential},
	Housing:       {25, 35, BucketEssential},
	Transport:     {10, 15, BucketEssential},
	Health:        {5, 10, BucketEssential},
	Education:     {5, 10, BucketInvestment},
	Leisure:       {10, 15, BucketVariable},
	Clothing:      {5, 10, BucketVariable},
	Technology:    {5, 8, BucketVariable},
	Travel:        {5, 10, BucketVariable},
	Delivery:      {5, 8, BucketSuperfluous},
	Subscriptions: {3, 5, BucketSuperfluous},
	Investment:    {20, 99, BucketInvestment},
	Other:         {5, 10, BucketVariable},
}

// DefaultTargets returns a fresh copy of the static budget table.
func DefaultTargets() map[Category]BudgetTarget {
	out := make(map[Category]BudgetTarget, len(defaultTargets))
	for k, v := range defaultTargets {
		out[k] = v
	}
	return out
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	_, ok := defaultTargets[c]
	return ok
}

// Rank is the position of c in Categories, or len(Categories) if unknown.
func (c Category) Rank() int {
	for i, v := range Categories {
		if v == c {
			return i
		}
	}
	return len(Categories)
}

func (c Category) Validate() error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
	}
	return nil
}

// ParseCategory matches a category name case-sensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}
