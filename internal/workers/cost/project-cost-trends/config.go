// internal/workers/cost/project-cost-trends/config.go
package projectcosttrends

import (
	"time"

	"studyabroad-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	Cost    config.CostConfig
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Cost: config.CostConfig{
			DefaultYears:            4,
			DefaultInflationPercent: 3.0,
			MaxYears:                30,
		},
	}
}
