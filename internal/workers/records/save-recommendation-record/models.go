// internal/workers/records/save-recommendation-record/models.go
package saverecommendationrecord

import "studyabroad-workers/internal/models"

type Input struct {
	UserID string `json:"userId"`
	// SessionID is optional; callers that retry with the same id are
	// detected as duplicates instead of storing the session twice.
	SessionID       string                       `json:"sessionId,omitempty"`
	Recommendations []models.RecommendationItem  `json:"recommendations"`
	Summary         models.RecommendationSummary `json:"summary"`
}

type Output struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	ItemCount int    `json:"itemCount"`
	CreatedAt string `json:"createdAt"` // ISO 8601
}
