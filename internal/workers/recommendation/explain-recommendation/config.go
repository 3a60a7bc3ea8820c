// internal/workers/recommendation/explain-recommendation/config.go
package explainrecommendation

import "time"

type Config struct {
	Timeout               time.Duration
	MaxPreferredCountries int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:               30 * time.Second,
		MaxPreferredCountries: 10,
	}
}
