// internal/workers/cost/analyze-costs/models.go
package analyzecosts

import "studyabroad-workers/internal/models"

const (
	AnalysisComparison    = "comparison"
	AnalysisAffordability = "affordability"
	AnalysisTrends        = "trends"
)

type Input struct {
	ProfileData          map[string]interface{} `json:"profileData,omitempty"`
	UniversityIDs        []string               `json:"universityIds"`
	AnalysisType         string                 `json:"analysisType"`
	Years                *int                   `json:"years,omitempty"`
	InflationRatePercent *float64               `json:"inflationRatePercent,omitempty"`
}

// Output carries exactly one of the three analysis payloads, keyed by
// AnalysisType.
type Output struct {
	AnalysisType  string                       `json:"analysisType"`
	Comparison    []models.CostComparisonEntry `json:"comparison,omitempty"`
	Affordability []models.AffordabilityEntry  `json:"affordability,omitempty"`
	Trends        []models.CostProjection      `json:"trends,omitempty"`
}
