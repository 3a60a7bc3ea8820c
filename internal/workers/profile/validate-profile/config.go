// internal/workers/profile/validate-profile/config.go
package validateprofile

import "time"

type Config struct {
	Timeout               time.Duration
	MaxPreferredCountries int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:               10 * time.Second,
		MaxPreferredCountries: 10,
	}
}
