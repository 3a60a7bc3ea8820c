// internal/workers/recommendation/generate-recommendations/handler.go
package generaterecommendations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"studyabroad-workers/internal/common/catalog"
	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/common/metrics"
	"studyabroad-workers/internal/common/mlservice"
	"studyabroad-workers/internal/common/validation"
	"studyabroad-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-recommendations"
)

var (
	ErrInvalidProfile  = errors.New("INVALID_PROFILE")
	ErrInvalidArgument = errors.New("INVALID_ARGUMENT")
)

type Handler struct {
	config    *Config
	validator *validation.ProfileValidator
	catalog   catalog.Store
	predictor *mlservice.SinglePredictor
	logger    logger.Logger
}

func NewHandler(config *Config, store catalog.Store, predictor *mlservice.SinglePredictor, log logger.Logger) *Handler {
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	return &Handler{
		config:    config,
		validator: validation.NewProfileValidator(config.Recommendation.MaxPreferredCountries),
		catalog:   store,
		predictor: predictor,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := "UNKNOWN_ERROR"
		switch {
		case errors.Is(err, ErrInvalidProfile):
			code = "INVALID_PROFILE"
		case errors.Is(err, ErrInvalidArgument):
			code = "INVALID_ARGUMENT"
		}
		h.failJob(client, job, code, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// scoredCandidate carries everything the ranking phase needs for one
// university. A nil item marks a candidate whose prediction failed; failed
// candidates are dropped from the result but still counted in the summary.
type scoredCandidate struct {
	item    *models.RecommendationItem
	ranking *int
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	maxResults := input.MaxResults
	if maxResults == 0 {
		maxResults = h.config.Recommendation.DefaultMaxResults
	}
	if maxResults < 1 || maxResults > h.config.Recommendation.MaxResultsLimit {
		return nil, fmt.Errorf("%w: maxResults must be between 1 and %d",
			ErrInvalidArgument, h.config.Recommendation.MaxResultsLimit)
	}
	if input.ProfileData == nil {
		input.ProfileData = map[string]interface{}{}
	}

	profile, result := h.validator.ValidateProfile(input.ProfileData)
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(result.GetErrorMessages(), "; "))
	}
	if precondErrors := validation.CheckRecommendationReady(profile); len(precondErrors) > 0 {
		msgs := make([]string, len(precondErrors))
		for i, e := range precondErrors {
			msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(msgs, "; "))
	}

	universities, err := h.catalog.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading university catalog: %w", err)
	}

	criteria := h.buildCriteria(input, profile)
	filtered := criteria.Apply(universities)

	candidates := make([]scoredCandidate, len(filtered))
	sem := make(chan struct{}, h.config.Concurrency)
	var wg sync.WaitGroup

	for i := range filtered {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			candidates[index] = h.scoreOne(ctx, profile, &filtered[index])
		}(i)
	}
	wg.Wait()

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.item != nil {
			scored = append(scored, c)
		}
	}

	sortCandidates(scored)

	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	recommendations := make([]models.RecommendationItem, len(scored))
	for i, c := range scored {
		c.item.RankingPosition = i + 1
		recommendations[i] = *c.item
	}

	output := &Output{
		Recommendations: recommendations,
		Summary: models.RecommendationSummary{
			TotalConsidered: len(universities),
			AfterFilters:    len(filtered),
			Scored:          countScored(candidates),
			Returned:        len(recommendations),
		},
	}

	metrics.RecommendationsReturned.Observe(float64(len(recommendations)))
	h.logger.Info("recommendations generated", map[string]interface{}{
		"totalConsidered": output.Summary.TotalConsidered,
		"afterFilters":    output.Summary.AfterFilters,
		"scored":          output.Summary.Scored,
		"returned":        output.Summary.Returned,
	})

	return output, nil
}

// buildCriteria merges explicit request filters with preferences declared on
// the profile. Explicit filters win; profile attributes only fill gaps.
// The profile budget is deliberately not turned into a budget filter:
// over-budget universities stay in the pool and their cost fit score decays
// instead, so only an explicit maxBudget filter excludes them outright.
func (h *Handler) buildCriteria(input *Input, profile *models.CandidateProfile) catalog.Criteria {
	criteria := catalog.Criteria{}
	if input.Filters != nil {
		criteria = *input.Filters
	}
	if len(criteria.Countries) == 0 {
		criteria.Countries = profile.PreferredCountries
	}
	if len(criteria.Fields) == 0 && profile.FieldOfStudy != "" {
		criteria.Fields = []string{profile.FieldOfStudy}
	}
	return criteria
}

func (h *Handler) scoreOne(ctx context.Context, profile *models.CandidateProfile, university *models.University) scoredCandidate {
	prediction, err := h.predictor.PredictForUniversity(ctx, profile, university)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("failed").Inc()
		h.logger.Warn("excluding university after failed prediction", map[string]interface{}{
			"universityId": university.ID,
			"error":        err.Error(),
		})
		return scoredCandidate{}
	}
	metrics.PredictionsTotal.WithLabelValues("success").Inc()

	costFit := mlservice.CostFitScore(profile, university)
	overall := h.config.Recommendation.ProbabilityWeight*prediction.AdmissionProbability +
		h.config.Recommendation.CostFitWeight*costFit

	return scoredCandidate{
		item: &models.RecommendationItem{
			UniversityID:         university.ID,
			UniversityName:       university.Name,
			Country:              university.Country,
			AdmissionProbability: prediction.AdmissionProbability,
			CostFitScore:         costFit,
			OverallScore:         overall,
			Reasons:              mlservice.GenerateReasons(prediction, costFit),
			ConfidenceLevel:      h.predictor.ConfidenceLevelFor(prediction.ConfidenceScore),
		},
		ranking: university.Ranking,
	}
}

// sortCandidates orders by overall score descending, breaking ties by world
// ranking ascending (unranked last) and finally by university ID.
func sortCandidates(candidates []scoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.item.OverallScore != b.item.OverallScore {
			return a.item.OverallScore > b.item.OverallScore
		}
		ar, br := rankingOrLast(a.ranking), rankingOrLast(b.ranking)
		if ar != br {
			return ar < br
		}
		return a.item.UniversityID < b.item.UniversityID
	})
}

func rankingOrLast(ranking *int) int {
	if ranking == nil {
		return int(^uint(0) >> 1)
	}
	return *ranking
}

func countScored(candidates []scoredCandidate) int {
	n := 0
	for _, c := range candidates {
		if c.item != nil {
			n++
		}
	}
	return n
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, _ = client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
