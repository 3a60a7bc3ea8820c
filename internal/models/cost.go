// internal/models/cost.go
package models

// YearProjection is one projected year of tuition under compounding
// inflation. YearOffset is 1-indexed from the current year.
type YearProjection struct {
	YearOffset       int     `json:"yearOffset"`
	ProjectedTuition float64 `json:"projectedTuition"`
}

// CostProjection is the multi-year cost trend for one university.
// Presentation values are rounded to cents; intermediate math keeps full
// precision.
type CostProjection struct {
	UniversityID          string           `json:"universityId"`
	UniversityName        string           `json:"universityName,omitempty"`
	BaseTuition           float64          `json:"baseTuition"`
	InflationRatePercent  float64          `json:"inflationRatePercent"`
	Years                 []YearProjection `json:"years"`
	TotalOverPeriod       float64          `json:"totalOverPeriod"`
	AverageAnnualIncrease float64          `json:"averageAnnualIncrease"`
}

// CostComparisonEntry is one row of a cross-university cost comparison,
// ordered by ascending tuition.
type CostComparisonEntry struct {
	UniversityID string  `json:"universityId"`
	Name         string  `json:"name"`
	Country      string  `json:"country,omitempty"`
	TuitionFee   float64 `json:"tuitionFee"`
	CostRank     int     `json:"costRank"` // 1 = cheapest
}

// AffordabilityEntry reports whether one university fits the candidate's
// declared budget, and by how much it misses when it does not.
type AffordabilityEntry struct {
	UniversityID string  `json:"universityId"`
	Name         string  `json:"name"`
	TuitionFee   float64 `json:"tuitionFee"`
	Affordable   bool    `json:"affordable"`
	Shortfall    float64 `json:"shortfall,omitempty"` // tuition - budgetMax when not affordable
}
