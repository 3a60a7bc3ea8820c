// internal/workers/cost/analyze-costs/handler.go
package analyzecosts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"studyabroad-workers/internal/common/catalog"
	"studyabroad-workers/internal/common/costing"
	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/common/validation"
	"studyabroad-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-costs"
)

var (
	ErrInvalidProfile     = errors.New("INVALID_PROFILE")
	ErrInvalidArgument    = errors.New("INVALID_ARGUMENT")
	ErrUniversityNotFound = errors.New("UNIVERSITY_NOT_FOUND")
)

type Handler struct {
	config    *Config
	validator *validation.ProfileValidator
	catalog   catalog.Store
	logger    logger.Logger
}

func NewHandler(config *Config, store catalog.Store, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		validator: validation.NewProfileValidator(config.MaxPreferredCountries),
		catalog:   store,
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
		case errors.Is(err, ErrUniversityNotFound):
			code = "UNIVERSITY_NOT_FOUND"
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.UniversityIDs) == 0 {
		return nil, fmt.Errorf("%w: universityIds must not be empty", ErrInvalidArgument)
	}

	analysisType := strings.ToLower(strings.TrimSpace(input.AnalysisType))
	switch analysisType {
	case AnalysisComparison, AnalysisAffordability, AnalysisTrends:
	default:
		return nil, fmt.Errorf("%w: unknown analysisType %q", ErrInvalidArgument, input.AnalysisType)
	}

	universities, err := h.resolveUniversities(ctx, input.UniversityIDs)
	if err != nil {
		return nil, err
	}

	output := &Output{AnalysisType: analysisType}

	switch analysisType {
	case AnalysisComparison:
		output.Comparison = costing.Compare(universities)

	case AnalysisAffordability:
		budgetMax, err := h.resolveBudget(input.ProfileData)
		if err != nil {
			return nil, err
		}
		output.Affordability = costing.Affordability(budgetMax, universities)

	case AnalysisTrends:
		years := h.config.Cost.DefaultYears
		if input.Years != nil {
			years = *input.Years
		}
		if years < 1 || years > h.config.Cost.MaxYears {
			return nil, fmt.Errorf("%w: years must be between 1 and %d", ErrInvalidArgument, h.config.Cost.MaxYears)
		}
		rate := h.config.Cost.DefaultInflationPercent
		if input.InflationRatePercent != nil {
			rate = *input.InflationRatePercent
		}

		output.Trends = make([]models.CostProjection, 0, len(universities))
		for i := range universities {
			projection, err := costing.Project(&universities[i], years, rate)
			if err != nil {
				if errors.Is(err, costing.ErrUnknownTuition) {
					return nil, fmt.Errorf("%w: no tuition on record for %s", ErrUniversityNotFound, universities[i].ID)
				}
				return nil, err
			}
			output.Trends = append(output.Trends, *projection)
		}
	}

	h.logger.Info("cost analysis completed", map[string]interface{}{
		"analysisType": analysisType,
		"universities": len(universities),
	})

	return output, nil
}

// resolveUniversities loads every requested university, preserving request
// order. Any unknown id fails the whole call.
func (h *Handler) resolveUniversities(ctx context.Context, ids []string) ([]models.University, error) {
	universities := make([]models.University, 0, len(ids))
	for _, id := range ids {
		university, err := h.catalog.Get(ctx, id)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUniversityNotFound, id)
			}
			return nil, err
		}
		universities = append(universities, *university)
	}
	return universities, nil
}

// resolveBudget extracts the budget ceiling the affordability analysis
// compares against. The profile must be structurally valid and declare
// budgetMax.
func (h *Handler) resolveBudget(profileData map[string]interface{}) (float64, error) {
	if profileData == nil {
		return 0, fmt.Errorf("%w: affordability analysis requires a profile with budgetMax", ErrInvalidArgument)
	}

	profile, result := h.validator.ValidateProfile(profileData)
	if !result.Valid {
		return 0, fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(result.GetErrorMessages(), "; "))
	}
	if !profile.HasBudget() {
		return 0, fmt.Errorf("%w: affordability analysis requires a profile with budgetMax", ErrInvalidArgument)
	}
	return *profile.BudgetMax, nil
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
