// internal/workers/recommendation/predict-admission-batch/handler_test.go
package predictadmissionbatch

import (
	"context"
	"testing"
	"time"

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

func createTestConfig() *Config {
	return &Config{
		Timeout:               60 * time.Second,
		Concurrency:           4,
		MaxPreferredCountries: 10,
	}
}

func testStore() catalog.Store {
	return catalog.NewStaticStore([]models.University{
		{ID: "u-001", Name: "Northfield University", Country: "US", AcceptanceRate: floatPtr(0.2)},
		{ID: "u-002", Name: "Lakeside College", Country: "UK", AcceptanceRate: floatPtr(0.5)},
		{ID: "u-003", Name: "Harborview Institute", Country: "CA", Ranking: intPtr(200)},
	})
}

func createTestHandler() *Handler {
	cfg := config.RecommendationConfig{
		MinConfidence:    0.3,
		HighConfidence:   0.75,
		MediumConfidence: 0.5,
	}
	predictor := mlservice.NewSinglePredictor(mlservice.NewHeuristicScorer(), testStore(), cfg, logger.NewNoOpLogger())
	return NewHandler(createTestConfig(), predictor, logger.NewNoOpLogger())
}

func validProfileData() map[string]interface{} {
	return map[string]interface{}{
		"cgpa":     3.7,
		"greScore": 320.0,
	}
}

func TestHandler_Execute_AllSucceed(t *testing.T) {
	handler := createTestHandler()

	output, err := handler.Execute(context.Background(), &Input{
		ProfileData:   validProfileData(),
		UniversityIDs: []string{"u-003", "u-001", "u-002"},
	})

	require.NoError(t, err)
	require.Len(t, output.Predictions, 3)
	// Input order is preserved regardless of goroutine completion order
	assert.Equal(t, "u-003", output.Predictions[0].UniversityID)
	assert.Equal(t, "u-001", output.Predictions[1].UniversityID)
	assert.Equal(t, "u-002", output.Predictions[2].UniversityID)
	assert.Empty(t, output.Failures)

	assert.Equal(t, 3, output.Summary.TotalRequested)
	assert.Equal(t, 3, output.Summary.SuccessfulCount)
	assert.Equal(t, 0, output.Summary.FailedCount)
}

func TestHandler_Execute_PartialFailure(t *testing.T) {
	handler := createTestHandler()

	output, err := handler.Execute(context.Background(), &Input{
		ProfileData:   validProfileData(),
		UniversityIDs: []string{"u-001", "missing-1", "u-002", "missing-2"},
	})

	require.NoError(t, err)
	require.Len(t, output.Predictions, 2)
	assert.Equal(t, "u-001", output.Predictions[0].UniversityID)
	assert.Equal(t, "u-002", output.Predictions[1].UniversityID)

	require.Len(t, output.Failures, 2)
	assert.Equal(t, "missing-1", output.Failures[0].UniversityID)
	assert.Equal(t, "UNIVERSITY_NOT_FOUND", output.Failures[0].Reason)
	assert.Equal(t, "missing-2", output.Failures[1].UniversityID)

	// Counts always reconcile
	assert.Equal(t, 4, output.Summary.TotalRequested)
	assert.Equal(t, output.Summary.TotalRequested,
		output.Summary.SuccessfulCount+output.Summary.FailedCount)
}

func TestHandler_Execute_EmptyList(t *testing.T) {
	handler := createTestHandler()

	_, err := handler.Execute(context.Background(), &Input{
		ProfileData:   validProfileData(),
		UniversityIDs: []string{},
	})

	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHandler_Execute_InvalidProfileFailsWholeBatch(t *testing.T) {
	handler := createTestHandler()

	_, err := handler.Execute(context.Background(), &Input{
		ProfileData:   map[string]interface{}{"cgpa": 9.0},
		UniversityIDs: []string{"u-001"},
	})

	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestHandler_Execute_DuplicateIDsScoredIndependently(t *testing.T) {
	handler := createTestHandler()

	output, err := handler.Execute(context.Background(), &Input{
		ProfileData:   validProfileData(),
		UniversityIDs: []string{"u-001", "u-001"},
	})

	require.NoError(t, err)
	require.Len(t, output.Predictions, 2)
	assert.Equal(t, output.Predictions[0], output.Predictions[1])
}

func TestHandler_Execute_LargeBatchBoundedConcurrency(t *testing.T) {
	handler := createTestHandler()

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = "u-002"
	}

	output, err := handler.Execute(context.Background(), &Input{
		ProfileData:   validProfileData(),
		UniversityIDs: ids,
	})

	require.NoError(t, err)
	assert.Len(t, output.Predictions, 50)
	assert.Equal(t, 50, output.Summary.SuccessfulCount)
}
