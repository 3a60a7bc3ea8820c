// internal/models/prediction.go
package models

// PredictionResult is the immutable outcome of scoring one
// (profile, university) pair.
type PredictionResult struct {
	UniversityID         string             `json:"universityId"`
	UniversityName       string             `json:"universityName,omitempty"`
	AdmissionProbability float64            `json:"admissionProbability"` // clamped to [0,1]
	ConfidenceScore      float64            `json:"confidenceScore"`      // [0,1]
	FactorsAnalyzed      map[string]float64 `json:"factorsAnalyzed,omitempty"`
}

// FailureRecord captures a per-item failure inside a batch. It is data, not a
// call-level error; sibling items are unaffected.
type FailureRecord struct {
	UniversityID string `json:"universityId"`
	Reason       string `json:"reason"` // stable error code
	Message      string `json:"message,omitempty"`
}

// BatchSummary reconciles a batch operation: SuccessfulCount + FailedCount
// always equals TotalRequested.
type BatchSummary struct {
	TotalRequested  int `json:"totalRequested"`
	SuccessfulCount int `json:"successfulCount"`
	FailedCount     int `json:"failedCount"`
}
