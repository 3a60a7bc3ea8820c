// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyabroad-workers/internal/common/catalog"
	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/common/mlservice"
	"studyabroad-workers/internal/models"

	analyzecosts "studyabroad-workers/internal/workers/cost/analyze-costs"
	projectcosttrends "studyabroad-workers/internal/workers/cost/project-cost-trends"
	buildresponse "studyabroad-workers/internal/workers/infrastructure/build-response"
	validateprofile "studyabroad-workers/internal/workers/profile/validate-profile"
	explainrecommendation "studyabroad-workers/internal/workers/recommendation/explain-recommendation"
	generaterecommendations "studyabroad-workers/internal/workers/recommendation/generate-recommendations"
	predictadmission "studyabroad-workers/internal/workers/recommendation/predict-admission"
	predictadmissionbatch "studyabroad-workers/internal/workers/recommendation/predict-admission-batch"
)

// The pipeline tests run the full worker chain in-process against a static
// catalog and the heuristic scorer, so no broker, database or model service
// is needed.

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func testStore() catalog.Store {
	return catalog.NewStaticStore([]models.University{
		{ID: "u-001", Name: "Northfield University", Country: "US", Ranking: intPtr(12),
			TuitionFee: floatPtr(45000), Fields: []string{"Computer Science"}, AcceptanceRate: floatPtr(0.2)},
		{ID: "u-002", Name: "Lakeside College", Country: "US", Ranking: intPtr(80),
			TuitionFee: floatPtr(22000), Fields: []string{"Computer Science", "Business"}, AcceptanceRate: floatPtr(0.5)},
		{ID: "u-003", Name: "Harborview Institute", Country: "CA",
			TuitionFee: floatPtr(18000), Fields: []string{"Computer Science"}, AcceptanceRate: floatPtr(0.6)},
		{ID: "u-004", Name: "Westgate School of Law", Country: "US", Ranking: intPtr(40),
			TuitionFee: floatPtr(30000), Fields: []string{"Law"}, AcceptanceRate: floatPtr(0.3)},
	})
}

func testPredictor(store catalog.Store) *mlservice.SinglePredictor {
	cfg := generaterecommendations.LoadConfig()
	return mlservice.NewSinglePredictor(
		mlservice.NewHeuristicScorer(), store, cfg.Recommendation, logger.NewNoOpLogger())
}

func studentProfile() map[string]interface{} {
	return map[string]interface{}{
		"cgpa":               3.6,
		"greScore":           315.0,
		"ieltsScore":         7.5,
		"fieldOfStudy":       "Computer Science",
		"preferredCountries": []interface{}{"US", "CA"},
		"budgetMax":          35000.0,
	}
}

// TestRecommendationPipeline walks the happy path a process instance would
// take: validate the profile, generate a ranked list, explain the top pick,
// and analyze costs for the returned universities.
func TestRecommendationPipeline(t *testing.T) {
	store := testStore()
	predictor := testPredictor(store)
	log := logger.NewNoOpLogger()
	ctx := context.Background()

	// Step 1: validate-profile
	vpHandler := validateprofile.NewHandler(validateprofile.LoadConfig(), log)
	vpOut, err := vpHandler.Execute(ctx, &validateprofile.Input{
		ProfileData: studentProfile(),
		Operation:   "recommend",
	})
	require.NoError(t, err)
	require.True(t, vpOut.IsValid)
	require.Empty(t, vpOut.ValidationErrors)
	require.NotNil(t, vpOut.Profile)

	// Step 2: generate-recommendations
	grHandler := generaterecommendations.NewHandler(
		generaterecommendations.LoadConfig(), store, predictor, log)
	grOut, err := grHandler.Execute(ctx, &generaterecommendations.Input{
		ProfileData: studentProfile(),
		MaxResults:  5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, grOut.Recommendations)

	// The Law school is filtered out by the profile's field of study. The
	// over-budget school survives with a decayed cost fit score.
	byID := map[string]float64{}
	for _, item := range grOut.Recommendations {
		assert.NotEqual(t, "u-004", item.UniversityID)
		byID[item.UniversityID] = item.CostFitScore
	}
	// u-001 tuition 45000 vs budget 35000: overrun 10000/35000
	require.Contains(t, byID, "u-001")
	assert.InDelta(t, 1.0-10000.0/35000.0, byID["u-001"], 1e-9)

	// Ranking positions are dense starting at 1, scores descend.
	for i, item := range grOut.Recommendations {
		assert.Equal(t, i+1, item.RankingPosition)
		if i > 0 {
			assert.GreaterOrEqual(t,
				grOut.Recommendations[i-1].OverallScore, item.OverallScore)
		}
	}
	assert.Equal(t, len(grOut.Recommendations), grOut.Summary.Returned)
	assert.Equal(t, 4, grOut.Summary.TotalConsidered)

	// Step 3: explain-recommendation for the top pick
	top := grOut.Recommendations[0]
	erHandler := explainrecommendation.NewHandler(
		explainrecommendation.LoadConfig(), store, predictor, log)
	erOut, err := erHandler.Execute(ctx, &explainrecommendation.Input{
		ProfileData:  studentProfile(),
		UniversityID: top.UniversityID,
	})
	require.NoError(t, err)
	assert.Equal(t, top.UniversityID, erOut.UniversityID)
	assert.Equal(t, top.UniversityName, erOut.UniversityName)
	require.NotNil(t, erOut.Prediction)
	assert.InDelta(t, top.AdmissionProbability, erOut.Prediction.AdmissionProbability, 1e-9)
	assert.NotEmpty(t, erOut.Reasons)

	// Step 4: analyze-costs over the recommended universities
	var ids []string
	for _, item := range grOut.Recommendations {
		ids = append(ids, item.UniversityID)
	}
	acHandler := analyzecosts.NewHandler(analyzecosts.LoadConfig(), store, log)
	acOut, err := acHandler.Execute(ctx, &analyzecosts.Input{
		ProfileData:   studentProfile(),
		UniversityIDs: ids,
		AnalysisType:  "affordability",
	})
	require.NoError(t, err)
	require.Len(t, acOut.Affordability, len(ids))
	for _, entry := range acOut.Affordability {
		if entry.UniversityID == "u-001" {
			assert.False(t, entry.Affordable)
			assert.InDelta(t, 10000.0, entry.Shortfall, 1e-9)
			continue
		}
		assert.True(t, entry.Affordable)
	}
}

// TestPredictionPipeline covers the single and batch prediction paths and
// checks they agree with each other.
func TestPredictionPipeline(t *testing.T) {
	store := testStore()
	predictor := testPredictor(store)
	log := logger.NewNoOpLogger()
	ctx := context.Background()

	paHandler := predictadmission.NewHandler(predictadmission.LoadConfig(), predictor, log)
	single, err := paHandler.Execute(ctx, &predictadmission.Input{
		ProfileData:  studentProfile(),
		UniversityID: "u-002",
	})
	require.NoError(t, err)
	require.NotNil(t, single.Prediction)
	assert.GreaterOrEqual(t, single.Prediction.AdmissionProbability, 0.0)
	assert.LessOrEqual(t, single.Prediction.AdmissionProbability, 1.0)
	assert.NotEmpty(t, single.Reasons)

	pabHandler := predictadmissionbatch.NewHandler(
		predictadmissionbatch.LoadConfig(), predictor, log)
	batch, err := pabHandler.Execute(ctx, &predictadmissionbatch.Input{
		ProfileData:   studentProfile(),
		UniversityIDs: []string{"u-001", "u-002", "u-999"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Summary.TotalRequested)
	assert.Equal(t, 2, batch.Summary.SuccessfulCount)
	assert.Equal(t, 1, batch.Summary.FailedCount)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, "u-999", batch.Failures[0].UniversityID)

	// The batch result for u-002 matches the single prediction.
	var fromBatch *models.PredictionResult
	for i := range batch.Predictions {
		if batch.Predictions[i].UniversityID == "u-002" {
			fromBatch = &batch.Predictions[i]
		}
	}
	require.NotNil(t, fromBatch)
	assert.InDelta(t, single.Prediction.AdmissionProbability, fromBatch.AdmissionProbability, 1e-9)
}

// TestCostTrendPipeline chains project-cost-trends with analyze-costs trends
// and verifies consistent projections.
func TestCostTrendPipeline(t *testing.T) {
	store := testStore()
	log := logger.NewNoOpLogger()
	ctx := context.Background()

	years := 4
	rate := 3.0

	pctHandler := projectcosttrends.NewHandler(projectcosttrends.LoadConfig(), store, log)
	direct, err := pctHandler.Execute(ctx, &projectcosttrends.Input{
		UniversityID:         "u-002",
		Years:                &years,
		InflationRatePercent: &rate,
	})
	require.NoError(t, err)
	require.NotNil(t, direct.Projection)
	require.Len(t, direct.Projection.Years, years)

	acHandler := analyzecosts.NewHandler(analyzecosts.LoadConfig(), store, log)
	viaAnalysis, err := acHandler.Execute(ctx, &analyzecosts.Input{
		UniversityIDs:        []string{"u-002"},
		AnalysisType:         "trends",
		Years:                &years,
		InflationRatePercent: &rate,
	})
	require.NoError(t, err)
	require.Len(t, viaAnalysis.Trends, 1)

	assert.Equal(t, direct.Projection.Years, viaAnalysis.Trends[0].Years)
	assert.Equal(t, direct.Projection.TotalOverPeriod, viaAnalysis.Trends[0].TotalOverPeriod)
}

// TestResponseAssembly feeds recommendation output through build-response.
func TestResponseAssembly(t *testing.T) {
	store := testStore()
	predictor := testPredictor(store)
	log := logger.NewNoOpLogger()
	ctx := context.Background()

	grHandler := generaterecommendations.NewHandler(
		generaterecommendations.LoadConfig(), store, predictor, log)
	grOut, err := grHandler.Execute(ctx, &generaterecommendations.Input{
		ProfileData: studentProfile(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, grOut.Recommendations)

	registry := map[string]interface{}{
		"templates": []map[string]interface{}{
			{
				"id":   "recommendation-response",
				"type": "recommendation-response",
				"template": map[string]interface{}{
					"recommendations": "{{recommendations}}",
					"summary": map[string]interface{}{
						"returned": "{{summary.returned}}",
					},
				},
				"version": "1.0",
			},
		},
	}
	registryBytes, err := json.Marshal(registry)
	require.NoError(t, err)

	tmpFile, err := os.CreateTemp("", "e2e_registry_*.json")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())
	_, err = tmpFile.Write(registryBytes)
	require.NoError(t, err)
	tmpFile.Close()

	// Round-trip the worker output through JSON the way job variables travel.
	var data map[string]interface{}
	payload, err := json.Marshal(grOut)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &data))

	brConfig := buildresponse.LoadConfig()
	brConfig.TemplateRegistry = tmpFile.Name()
	brHandler := buildresponse.NewHandler(brConfig, log)
	brOut, err := brHandler.Execute(ctx, &buildresponse.Input{
		TemplateId: "recommendation-response",
		RequestId:  "req-e2e-1",
		Data:       data,
	})
	require.NoError(t, err)

	assert.Equal(t, "req-e2e-1", brOut.Response.RequestId)
	assert.Equal(t, "success", brOut.Response.Status)

	items, ok := brOut.Response.Data["recommendations"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, len(grOut.Recommendations))

	summary, ok := brOut.Response.Data["summary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(grOut.Summary.Returned), summary["returned"])
}

// TestValidationGate verifies that an invalid profile is rejected before any
// downstream worker runs.
func TestValidationGate(t *testing.T) {
	log := logger.NewNoOpLogger()
	ctx := context.Background()

	vpHandler := validateprofile.NewHandler(validateprofile.LoadConfig(), log)
	out, err := vpHandler.Execute(ctx, &validateprofile.Input{
		ProfileData: map[string]interface{}{
			"cgpa":     5.0,
			"greScore": 200.0,
		},
		Operation: "recommend",
	})
	require.NoError(t, err)
	assert.False(t, out.IsValid)
	assert.NotEmpty(t, out.ValidationErrors)
}
