// internal/models/recommendation.go
package models

// ConfidenceLevel is the coarse bucket derived from a numeric confidence
// score.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "LOW"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceHigh   ConfidenceLevel = "HIGH"
)

// RecommendationItem is one ranked entry of a recommendation response.
// RankingPosition is a dense 1..N sequence assigned after sorting.
type RecommendationItem struct {
	UniversityID         string          `json:"universityId"`
	UniversityName       string          `json:"universityName"`
	Country              string          `json:"country,omitempty"`
	AdmissionProbability float64         `json:"admissionProbability"`
	CostFitScore         float64         `json:"costFitScore"`
	OverallScore         float64         `json:"overallScore"`
	RankingPosition      int             `json:"rankingPosition"`
	Reasons              []string        `json:"reasons"`
	ConfidenceLevel      ConfidenceLevel `json:"confidenceLevel"`
}

// RecommendationSummary reports how the candidate pool was narrowed down.
type RecommendationSummary struct {
	TotalConsidered int `json:"totalConsidered"` // catalog entries inspected
	AfterFilters    int `json:"afterFilters"`    // survived declarative filters
	Scored          int `json:"scored"`          // predictions that succeeded
	Returned        int `json:"returned"`        // items in the final list
}

// RecommendationSession groups persisted recommendation results, mirroring
// the recommendation_sessions records kept by the record store.
type RecommendationSession struct {
	SessionID  string `json:"sessionId"`
	UserID     string `json:"userId"`
	Status     string `json:"status"`
	ItemCount  int    `json:"itemCount"`
	CreatedAt  string `json:"createdAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}
