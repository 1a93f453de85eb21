package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Total    Money    `json:"total"`
}

// MonthSummary is a compact summary for a specific year+month.
type MonthSummary struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"` // 1-12
	Label      string           `json:"label"`
	Total      Money            `json:"total"`
	ByCategory []CategoryAmount `json:"by_category"`
}
