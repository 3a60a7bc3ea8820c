// internal/workers/recommendation/explain-recommendation/models.go
package explainrecommendation

import "studyabroad-workers/internal/models"

type Input struct {
	ProfileData  map[string]interface{} `json:"profileData"`
	UniversityID string                 `json:"universityId"`
}

type Output struct {
	UniversityID   string                   `json:"universityId"`
	UniversityName string                   `json:"universityName"`
	Reasons        []string                 `json:"reasons"`
	Prediction     *models.PredictionResult `json:"prediction"`
	CostFitScore   float64                  `json:"costFitScore"`
}
