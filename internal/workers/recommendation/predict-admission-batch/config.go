// internal/workers/recommendation/predict-admission-batch/config.go
package predictadmissionbatch

import "time"

type Config struct {
	Timeout               time.Duration
	Concurrency           int
	MaxPreferredCountries int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:               60 * time.Second,
		Concurrency:           4,
		MaxPreferredCountries: 10,
	}
}
