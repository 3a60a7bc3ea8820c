// internal/workers/cost/project-cost-trends/models.go
package projectcosttrends

import "studyabroad-workers/internal/models"

type Input struct {
	UniversityID         string   `json:"universityId"`
	Years                *int     `json:"years,omitempty"`
	InflationRatePercent *float64 `json:"inflationRatePercent,omitempty"`
}

type Output struct {
	Projection *models.CostProjection `json:"projection"`
}
