// internal/workers/recommendation/generate-recommendations/config.go
package generaterecommendations

import (
	"time"

	"studyabroad-workers/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	Concurrency    int
	Recommendation config.RecommendationConfig
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     60 * time.Second,
		Concurrency: 4,
		Recommendation: config.RecommendationConfig{
			ProbabilityWeight:     0.6,
			CostFitWeight:         0.4,
			MinConfidence:         0.3,
			HighConfidence:        0.75,
			MediumConfidence:      0.5,
			MaxResultsLimit:       50,
			DefaultMaxResults:     10,
			BatchConcurrency:      4,
			MaxPreferredCountries: 10,
		},
	}
}
