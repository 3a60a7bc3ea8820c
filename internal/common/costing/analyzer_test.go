// internal/common/costing/analyzer_test.go
package costing

import (
	"testing"

	"studyabroad-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestProject_CompoundingInflation(t *testing.T) {
	university := &models.University{ID: "u-001", Name: "Northfield University", TuitionFee: floatPtr(10000)}

	projection, err := Project(university, 2, 10)
	require.NoError(t, err)

	require.Len(t, projection.Years, 2)
	assert.Equal(t, 1, projection.Years[0].YearOffset)
	assert.InDelta(t, 11000, projection.Years[0].ProjectedTuition, 1e-9)
	assert.Equal(t, 2, projection.Years[1].YearOffset)
	assert.InDelta(t, 12100, projection.Years[1].ProjectedTuition, 1e-9)
	assert.InDelta(t, 23100, projection.TotalOverPeriod, 1e-9)
	assert.InDelta(t, (12100-10000)/2.0, projection.AverageAnnualIncrease, 1e-9)
}

func TestProject_ZeroInflationIsFlat(t *testing.T) {
	university := &models.University{ID: "u-001", TuitionFee: floatPtr(25000)}

	projection, err := Project(university, 3, 0)
	require.NoError(t, err)

	for _, year := range projection.Years {
		assert.InDelta(t, 25000, year.ProjectedTuition, 1e-9)
	}
	assert.InDelta(t, 75000, projection.TotalOverPeriod, 1e-9)
	assert.InDelta(t, 0, projection.AverageAnnualIncrease, 1e-9)
}

func TestProject_NegativeInflationAllowed(t *testing.T) {
	university := &models.University{ID: "u-001", TuitionFee: floatPtr(10000)}

	projection, err := Project(university, 1, -10)
	require.NoError(t, err)

	assert.InDelta(t, 9000, projection.Years[0].ProjectedTuition, 1e-9)
	assert.InDelta(t, -1000, projection.AverageAnnualIncrease, 1e-9)
}

func TestProject_RoundsToCentsAtPresentation(t *testing.T) {
	university := &models.University{ID: "u-001", TuitionFee: floatPtr(10000)}

	// 3% over 3 years: 10300, 10609, 10927.27; total uses the unrounded
	// 10927.27 figure, not an accumulation of rounded years.
	projection, err := Project(university, 3, 3)
	require.NoError(t, err)

	assert.InDelta(t, 10300, projection.Years[0].ProjectedTuition, 1e-9)
	assert.InDelta(t, 10609, projection.Years[1].ProjectedTuition, 1e-9)
	assert.InDelta(t, 10927.27, projection.Years[2].ProjectedTuition, 1e-9)
	assert.InDelta(t, 31836.27, projection.TotalOverPeriod, 1e-9)
}

func TestProject_InvalidInputs(t *testing.T) {
	known := &models.University{ID: "u-001", TuitionFee: floatPtr(10000)}
	unknown := &models.University{ID: "u-002"}

	_, err := Project(known, 0, 3)
	assert.ErrorIs(t, err, ErrInvalidYears)

	_, err = Project(known, -1, 3)
	assert.ErrorIs(t, err, ErrInvalidYears)

	_, err = Project(unknown, 4, 3)
	assert.ErrorIs(t, err, ErrUnknownTuition)
}

func TestCompare_OrdersByAscendingTuition(t *testing.T) {
	entries := Compare([]models.University{
		{ID: "u-001", Name: "Northfield University", TuitionFee: floatPtr(45000)},
		{ID: "u-002", Name: "Lakeside College", TuitionFee: floatPtr(20000)},
		{ID: "u-003", Name: "Harborview Institute"},
		{ID: "u-004", Name: "Westgate School of Law", TuitionFee: floatPtr(30000)},
	})

	require.Len(t, entries, 3)
	assert.Equal(t, "u-002", entries[0].UniversityID)
	assert.Equal(t, 1, entries[0].CostRank)
	assert.Equal(t, "u-004", entries[1].UniversityID)
	assert.Equal(t, 2, entries[1].CostRank)
	assert.Equal(t, "u-001", entries[2].UniversityID)
	assert.Equal(t, 3, entries[2].CostRank)
}

func TestAffordability_ShortfallOnlyWhenOverBudget(t *testing.T) {
	entries := Affordability(25000, []models.University{
		{ID: "u-001", Name: "Northfield University", TuitionFee: floatPtr(45000)},
		{ID: "u-002", Name: "Lakeside College", TuitionFee: floatPtr(20000)},
		{ID: "u-003", Name: "Harborview Institute"},
	})

	require.Len(t, entries, 2)
	assert.False(t, entries[0].Affordable)
	assert.InDelta(t, 20000, entries[0].Shortfall, 1e-9)
	assert.True(t, entries[1].Affordable)
	assert.Zero(t, entries[1].Shortfall)
}
