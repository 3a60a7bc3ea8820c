// internal/workers/cost/analyze-costs/config.go
package analyzecosts

import (
	"time"

	"studyabroad-workers/internal/common/config"
)

type Config struct {
	Timeout               time.Duration
	MaxPreferredCountries int
	Cost                  config.CostConfig
}

func LoadConfig() *Config {
	return &Config{
		Timeout:               30 * time.Second,
		MaxPreferredCountries: 10,
		Cost: config.CostConfig{
			DefaultYears:            4,
			DefaultInflationPercent: 3.0,
			MaxYears:                30,
		},
	}
}
