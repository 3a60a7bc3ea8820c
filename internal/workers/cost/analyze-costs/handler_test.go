// internal/workers/cost/analyze-costs/handler_test.go
package analyzecosts

import (
	"context"
	"testing"

	"studyabroad-workers/internal/common/catalog"
	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func createTestHandler() *Handler {
	store := catalog.NewStaticStore([]models.University{
		{ID: "u-001", Name: "Northfield University", Country: "US", TuitionFee: floatPtr(45000)},
		{ID: "u-002", Name: "Lakeside College", Country: "UK", TuitionFee: floatPtr(20000)},
		{ID: "u-003", Name: "Harborview Institute", Country: "CA"},
	})
	return NewHandler(LoadConfig(), store, logger.NewNoOpLogger())
}

func TestHandler_Execute_Comparison(t *testing.T) {
	handler := createTestHandler()

	output, err := handler.Execute(context.Background(), &Input{
		UniversityIDs: []string{"u-001", "u-002", "u-003"},
		AnalysisType:  AnalysisComparison,
	})
	require.NoError(t, err)

	assert.Equal(t, AnalysisComparison, output.AnalysisType)
	// u-003 has no tuition on record and is left out of the ranking.
	require.Len(t, output.Comparison, 2)
	assert.Equal(t, "u-002", output.Comparison[0].UniversityID)
	assert.Equal(t, 1, output.Comparison[0].CostRank)
	assert.Equal(t, "u-001", output.Comparison[1].UniversityID)
	assert.Equal(t, 2, output.Comparison[1].CostRank)
}

func TestHandler_Execute_Affordability(t *testing.T) {
	handler := createTestHandler()

	output, err := handler.Execute(context.Background(), &Input{
		ProfileData:   map[string]interface{}{"budgetMax": 25000.0},
		UniversityIDs: []string{"u-001", "u-002"},
		AnalysisType:  AnalysisAffordability,
	})
	require.NoError(t, err)

	require.Len(t, output.Affordability, 2)
	assert.False(t, output.Affordability[0].Affordable)
	assert.InDelta(t, 20000, output.Affordability[0].Shortfall, 1e-9)
	assert.True(t, output.Affordability[1].Affordable)
}

func TestHandler_Execute_AffordabilityRequiresBudget(t *testing.T) {
	handler := createTestHandler()

	_, err := handler.Execute(context.Background(), &Input{
		UniversityIDs: []string{"u-001"},
		AnalysisType:  AnalysisAffordability,
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = handler.Execute(context.Background(), &Input{
		ProfileData:   map[string]interface{}{"cgpa": 3.5},
		UniversityIDs: []string{"u-001"},
		AnalysisType:  AnalysisAffordability,
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHandler_Execute_Trends(t *testing.T) {
	handler := createTestHandler()

	output, err := handler.Execute(context.Background(), &Input{
		UniversityIDs:        []string{"u-002"},
		AnalysisType:         AnalysisTrends,
		Years:                intPtr(2),
		InflationRatePercent: floatPtr(10),
	})
	require.NoError(t, err)

	require.Len(t, output.Trends, 1)
	projection := output.Trends[0]
	assert.Equal(t, "u-002", projection.UniversityID)
	require.Len(t, projection.Years, 2)
	assert.InDelta(t, 22000, projection.Years[0].ProjectedTuition, 1e-9)
	assert.InDelta(t, 24200, projection.Years[1].ProjectedTuition, 1e-9)
}

func TestHandler_Execute_TrendsUnknownTuitionFails(t *testing.T) {
	handler := createTestHandler()

	_, err := handler.Execute(context.Background(), &Input{
		UniversityIDs: []string{"u-002", "u-003"},
		AnalysisType:  AnalysisTrends,
	})
	assert.ErrorIs(t, err, ErrUniversityNotFound)
}

func TestHandler_Execute_InvalidInputs(t *testing.T) {
	handler := createTestHandler()

	_, err := handler.Execute(context.Background(), &Input{
		UniversityIDs: []string{},
		AnalysisType:  AnalysisComparison,
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = handler.Execute(context.Background(), &Input{
		UniversityIDs: []string{"u-001"},
		AnalysisType:  "histogram",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = handler.Execute(context.Background(), &Input{
		UniversityIDs: []string{"u-404"},
		AnalysisType:  AnalysisComparison,
	})
	assert.ErrorIs(t, err, ErrUniversityNotFound)
}
