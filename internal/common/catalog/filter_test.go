package catalog

import (
	"testing"

	"studyabroad-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func testUniversities() []models.University {
	return []models.University{
		{
			ID:             "u-001",
			Name:           "Northfield University",
			Country:        "US",
			Ranking:        intPtr(12),
			TuitionFee:     floatPtr(45000),
			Fields:         []string{"Computer Science", "Engineering"},
			AcceptanceRate: floatPtr(0.2),
		},
		{
			ID:         "u-002",
			Name:       "Lakeside College",
			Country:    "UK",
			Ranking:    intPtr(80),
			TuitionFee: floatPtr(28000),
			Fields:     []string{"Business"},
			// acceptance rate unknown
		},
		{
			ID:             "u-003",
			Name:           "Harborview Institute",
			Country:        "CA",
			Fields:         []string{"Computer Science"},
			AcceptanceRate: floatPtr(0.6),
			// ranking and tuition unknown
		},
		{
			ID:         "u-004",
			Name:       "Civic Open University",
			Country:    "US",
			TuitionFee: floatPtr(0),
			Fields:     []string{"Law"},
		},
	}
}

func TestCriteria_Apply(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		wantIDs  []string
	}{
		{
			name:     "no criteria retains everything",
			criteria: Criteria{},
			wantIDs:  []string{"u-001", "u-002", "u-003", "u-004"},
		},
		{
			name:     "country filter is case insensitive",
			criteria: Criteria{Countries: []string{"us", "ca"}},
			wantIDs:  []string{"u-001", "u-003", "u-004"},
		},
		{
			name:     "field filter matches any offered field",
			criteria: Criteria{Fields: []string{"computer science"}},
			wantIDs:  []string{"u-001", "u-003"},
		},
		{
			name:     "field token contained in offered field matches",
			criteria: Criteria{Fields: []string{"computer"}},
			wantIDs:  []string{"u-001", "u-003"},
		},
		{
			name:     "offered field contained in requested token matches",
			criteria: Criteria{Fields: []string{"Computer Science and Artificial Intelligence"}},
			wantIDs:  []string{"u-001", "u-003"},
		},
		{
			name:     "budget filter retains unknown tuition",
			criteria: Criteria{MaxBudget: floatPtr(30000)},
			wantIDs:  []string{"u-002", "u-003", "u-004"},
		},
		{
			name:     "zero budget keeps only free or unknown tuition",
			criteria: Criteria{MaxBudget: floatPtr(0)},
			wantIDs:  []string{"u-003", "u-004"},
		},
		{
			name:     "ranking filter drops unranked",
			criteria: Criteria{MaxRanking: intPtr(50)},
			wantIDs:  []string{"u-001"},
		},
		{
			name:     "acceptance rate filter drops unknown",
			criteria: Criteria{MinAcceptanceRate: floatPtr(0.5)},
			wantIDs:  []string{"u-003"},
		},
		{
			name: "combined criteria",
			criteria: Criteria{
				Fields:    []string{"Computer Science"},
				MaxBudget: floatPtr(50000),
			},
			wantIDs: []string{"u-001", "u-003"},
		},
		{
			name:     "no matches yields empty slice",
			criteria: Criteria{Countries: []string{"DE"}},
			wantIDs:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.criteria.Apply(testUniversities())

			gotIDs := make([]string, 0, len(result))
			for _, uni := range result {
				gotIDs = append(gotIDs, uni.ID)
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
		})
	}
}

func TestCriteria_IsActive(t *testing.T) {
	assert.False(t, Criteria{}.IsActive())
	assert.True(t, Criteria{Countries: []string{"US"}}.IsActive())
	assert.True(t, Criteria{MaxBudget: floatPtr(1000)}.IsActive())
	assert.True(t, Criteria{MinAcceptanceRate: floatPtr(0.1)}.IsActive())
}
