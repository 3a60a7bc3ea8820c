// internal/workers/recommendation/predict-admission-batch/models.go
package predictadmissionbatch

import (
	"studyabroad-workers/internal/models"
)

type Input struct {
	ProfileData   map[string]interface{} `json:"profileData"`
	UniversityIDs []string               `json:"universityIds"`
}

type Output struct {
	Predictions []models.PredictionResult `json:"predictions"`
	Failures    []models.FailureRecord    `json:"failures"`
	Summary     models.BatchSummary       `json:"summary"`
}
