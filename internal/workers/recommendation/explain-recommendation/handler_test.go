// internal/workers/recommendation/explain-recommendation/handler_test.go
package explainrecommendation

import (
	"context"
	"strings"
	"testing"

	"studyabroad-workers/internal/common/catalog"
	"studyabroad-workers/internal/common/config"
	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/common/mlservice"
	"studyabroad-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func testStore() catalog.Store {
	return catalog.NewStaticStore([]models.University{
		{ID: "u-001", Name: "Northfield University", Country: "US", Ranking: intPtr(12),
			TuitionFee: floatPtr(45000), AcceptanceRate: floatPtr(0.2)},
		{ID: "u-002", Name: "Lakeside College", Country: "UK", Ranking: intPtr(80),
			TuitionFee: floatPtr(20000), AcceptanceRate: floatPtr(0.5)},
	})
}

func createTestHandler() *Handler {
	cfg := config.RecommendationConfig{
		MinConfidence:    0.3,
		HighConfidence:   0.75,
		MediumConfidence: 0.5,
	}
	store := testStore()
	predictor := mlservice.NewSinglePredictor(mlservice.NewHeuristicScorer(), store, cfg, logger.NewNoOpLogger())
	return NewHandler(LoadConfig(), store, predictor, logger.NewNoOpLogger())
}

func validProfileData() map[string]interface{} {
	return map[string]interface{}{
		"cgpa":     3.7,
		"greScore": 320.0,
	}
}

func TestHandler_Execute_GeneratesReasons(t *testing.T) {
	handler := createTestHandler()

	output, err := handler.Execute(context.Background(), &Input{
		ProfileData:  validProfileData(),
		UniversityID: "u-002",
	})
	require.NoError(t, err)

	assert.Equal(t, "u-002", output.UniversityID)
	assert.Equal(t, "Lakeside College", output.UniversityName)
	require.NotNil(t, output.Prediction)
	assert.NotEmpty(t, output.Reasons)
	assert.InDelta(t, 1.0, output.CostFitScore, 1e-9)
}

func TestHandler_Execute_BudgetNoteWhenCostFitLow(t *testing.T) {
	handler := createTestHandler()

	profileData := validProfileData()
	profileData["budgetMax"] = 25000.0

	// u-001 tuition 45000 against a 25000 budget: costFit 0.2, well below
	// the 0.5 commentary threshold.
	output, err := handler.Execute(context.Background(), &Input{
		ProfileData:  profileData,
		UniversityID: "u-001",
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.2, output.CostFitScore, 1e-9)
	found := false
	for _, reason := range output.Reasons {
		if strings.Contains(reason, "budget") {
			found = true
		}
	}
	assert.True(t, found, "expected a budget note in reasons: %v", output.Reasons)
}

func TestHandler_Execute_Deterministic(t *testing.T) {
	handler := createTestHandler()
	input := &Input{ProfileData: validProfileData(), UniversityID: "u-001"}

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.Reasons, second.Reasons)
	assert.Equal(t, first.Prediction.AdmissionProbability, second.Prediction.AdmissionProbability)
}

func TestHandler_Execute_UniversityNotFound(t *testing.T) {
	handler := createTestHandler()

	_, err := handler.Execute(context.Background(), &Input{
		ProfileData:  validProfileData(),
		UniversityID: "u-999",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUniversityNotFound)

	code, retries := classifyError(err)
	assert.Equal(t, "UNIVERSITY_NOT_FOUND", code)
	assert.Equal(t, int32(0), retries)
}

func TestHandler_Execute_InvalidInputs(t *testing.T) {
	handler := createTestHandler()

	_, err := handler.Execute(context.Background(), &Input{
		ProfileData:  validProfileData(),
		UniversityID: "  ",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = handler.Execute(context.Background(), &Input{
		ProfileData:  map[string]interface{}{"cgpa": 5.0},
		UniversityID: "u-001",
	})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}
