package catalog

import (
	"strings"

	"studyabroad-workers/internal/models"
)

// Criteria narrows the catalog before scoring. Zero-valued criteria are
// inactive; an inactive criterion retains every university.
type Criteria struct {
	Countries         []string `json:"countries,omitempty"`
	Fields            []string `json:"fields,omitempty"`
	MaxBudget         *float64 `json:"maxBudget,omitempty"`
	MaxRanking        *int     `json:"maxRanking,omitempty"`
	MinAcceptanceRate *float64 `json:"minAcceptanceRate,omitempty"`
}

// Apply returns the universities that pass every active criterion,
// preserving input order. Universities with an unknown tuition fee survive
// the budget filter; universities missing a ranking or acceptance rate are
// dropped by the respective filters because those cannot be verified.
func (c Criteria) Apply(universities []models.University) []models.University {
	result := make([]models.University, 0, len(universities))
	for _, uni := range universities {
		if c.matches(&uni) {
			result = append(result, uni)
		}
	}
	return result
}

func (c Criteria) matches(uni *models.University) bool {
	if len(c.Countries) > 0 && !containsFold(c.Countries, uni.Country) {
		return false
	}

	if len(c.Fields) > 0 {
		found := false
		for _, offered := range uni.Fields {
			for _, requested := range c.Fields {
				if fieldMatches(requested, offered) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}

	if c.MaxBudget != nil && uni.TuitionFee != nil && *uni.TuitionFee > *c.MaxBudget {
		return false
	}

	if c.MaxRanking != nil {
		if uni.Ranking == nil || *uni.Ranking > *c.MaxRanking {
			return false
		}
	}

	if c.MinAcceptanceRate != nil {
		if uni.AcceptanceRate == nil || *uni.AcceptanceRate < *c.MinAcceptanceRate {
			return false
		}
	}

	return true
}

// IsActive reports whether any criterion is set.
func (c Criteria) IsActive() bool {
	return len(c.Countries) > 0 ||
		len(c.Fields) > 0 ||
		c.MaxBudget != nil ||
		c.MaxRanking != nil ||
		c.MinAcceptanceRate != nil
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(needle)) {
			return true
		}
	}
	return false
}

// fieldMatches matches study fields loosely: a requested token matches an
// offered field when either string contains the other, ignoring case.
// "computer" matches "Computer Science" and vice versa.
func fieldMatches(requested, offered string) bool {
	r := strings.ToLower(strings.TrimSpace(requested))
	o := strings.ToLower(strings.TrimSpace(offered))
	if r == "" || o == "" {
		return false
	}
	return strings.Contains(o, r) || strings.Contains(r, o)
}
