package mlservice

import (
	"context"
	"errors"
	"fmt"

	"studyabroad-workers/internal/common/catalog"
	"studyabroad-workers/internal/common/config"
	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/models"
)

// SinglePredictor scores one candidate profile against one university. It is
// shared by the single, batch and recommendation workers so they all apply
// identical clamping and confidence policy.
type SinglePredictor struct {
	scorer  Scorer
	catalog catalog.Store
	config  config.RecommendationConfig
	logger  logger.Logger
}

func NewSinglePredictor(scorer Scorer, store catalog.Store, cfg config.RecommendationConfig, log logger.Logger) *SinglePredictor {
	return &SinglePredictor{
		scorer:  scorer,
		catalog: store,
		config:  cfg,
		logger:  log.WithFields(map[string]interface{}{"component": "predictor"}),
	}
}

// Predict resolves the university and scores the profile against it.
// Unknown universities surface catalog.ErrNotFound; scorer failures are
// wrapped in ErrModelUnavailable unless already a model error.
func (p *SinglePredictor) Predict(ctx context.Context, profile *models.CandidateProfile, universityID string) (*models.PredictionResult, error) {
	university, err := p.catalog.Get(ctx, universityID)
	if err != nil {
		return nil, err
	}

	return p.PredictForUniversity(ctx, profile, university)
}

// PredictForUniversity scores against an already resolved university,
// avoiding a second catalog lookup in the recommendation pipeline.
func (p *SinglePredictor) PredictForUniversity(ctx context.Context, profile *models.CandidateProfile, university *models.University) (*models.PredictionResult, error) {
	score, err := p.scorer.Score(ctx, profile, university)
	if err != nil {
		if isModelError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	result := &models.PredictionResult{
		UniversityID:         university.ID,
		UniversityName:       university.Name,
		AdmissionProbability: clamp01(score.Probability),
		ConfidenceScore:      p.Confidence(profile),
		FactorsAnalyzed:      score.Factors,
	}

	p.logger.Debug("prediction produced", map[string]interface{}{
		"universityId": university.ID,
		"probability":  result.AdmissionProbability,
		"confidence":   result.ConfidenceScore,
	})

	return result, nil
}

// Confidence grows with profile completeness: the share of the four academic
// fields that are present, floored at the configured minimum.
func (p *SinglePredictor) Confidence(profile *models.CandidateProfile) float64 {
	confidence := float64(profile.AcademicFieldsPresent()) / float64(models.AcademicFieldCount)
	if confidence < p.config.MinConfidence {
		confidence = p.config.MinConfidence
	}
	return clamp01(confidence)
}

// ConfidenceLevelFor buckets a numeric confidence score.
func (p *SinglePredictor) ConfidenceLevelFor(score float64) models.ConfidenceLevel {
	switch {
	case score >= p.config.HighConfidence:
		return models.ConfidenceHigh
	case score >= p.config.MediumConfidence:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// CostFitScore measures how well a university's tuition fits the declared
// budget. Without a budget or tuition figure the score is a neutral 1.0;
// overruns decay linearly and bottom out at zero.
func CostFitScore(profile *models.CandidateProfile, university *models.University) float64 {
	if !profile.HasBudget() || !university.HasTuition() {
		return 1.0
	}

	tuition := *university.TuitionFee
	budget := *profile.BudgetMax
	if tuition <= budget {
		return 1.0
	}

	overrun := (tuition - budget) / budget
	fit := 1.0 - overrun
	if fit < 0 {
		fit = 0
	}
	return fit
}

func isModelError(err error) bool {
	return errors.Is(err, ErrModelUnavailable) || errors.Is(err, ErrModelTimeout)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
