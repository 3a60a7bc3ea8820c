// internal/workers/recommendation/predict-admission/config.go
package predictadmission

import "time"

type Config struct {
	Timeout               time.Duration
	MaxPreferredCountries int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:               15 * time.Second,
		MaxPreferredCountries: 10,
	}
}
