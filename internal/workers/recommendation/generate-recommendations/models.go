// internal/workers/recommendation/generate-recommendations/models.go
package generaterecommendations

import (
	"studyabroad-workers/internal/common/catalog"
	"studyabroad-workers/internal/models"
)

type Input struct {
	ProfileData map[string]interface{} `json:"profileData"`
	MaxResults  int                    `json:"maxResults,omitempty"`
	// Filters narrow the catalog beyond what the profile implies. Explicit
	// filters take precedence over profile-derived ones.
	Filters *catalog.Criteria `json:"filters,omitempty"`
}

type Output struct {
	Recommendations []models.RecommendationItem  `json:"recommendations"`
	Summary         models.RecommendationSummary `json:"summary"`
}
