// internal/workers/recommendation/predict-admission/models.go
package predictadmission

import (
	"studyabroad-workers/internal/models"
)

type Input struct {
	ProfileData  map[string]interface{} `json:"profileData"`
	UniversityID string                 `json:"universityId"`
}

type Output struct {
	Prediction      *models.PredictionResult `json:"prediction"`
	ConfidenceLevel models.ConfidenceLevel   `json:"confidenceLevel"`
	Reasons         []string                 `json:"reasons"`
}
