// internal/workers/recommendation/explain-recommendation/handler.go
package explainrecommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"studyabroad-workers/internal/common/catalog"
	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/common/metrics"
	"studyabroad-workers/internal/common/mlservice"
	"studyabroad-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "explain-recommendation"
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
	predictor *mlservice.SinglePredictor
	logger    logger.Logger
}

func NewHandler(config *Config, store catalog.Store, predictor *mlservice.SinglePredictor, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		validator: validation.NewProfileValidator(config.MaxPreferredCountries),
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
		h.failJob(client, job, "PARSE_ERROR", err.Error(), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		code, retries := classifyError(err)
		h.failJob(client, job, code, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.UniversityID) == "" {
		return nil, fmt.Errorf("%w: universityId is required", ErrInvalidArgument)
	}
	if input.ProfileData == nil {
		input.ProfileData = map[string]interface{}{}
	}

	profile, result := h.validator.ValidateProfile(input.ProfileData)
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(result.GetErrorMessages(), "; "))
	}
	if precondErrors := validation.CheckPredictionReady(profile); len(precondErrors) > 0 {
		msgs := make([]string, len(precondErrors))
		for i, e := range precondErrors {
			msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(msgs, "; "))
	}

	university, err := h.catalog.Get(ctx, input.UniversityID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUniversityNotFound, input.UniversityID)
		}
		return nil, err
	}

	prediction, err := h.predictor.PredictForUniversity(ctx, profile, university)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.PredictionsTotal.WithLabelValues("success").Inc()

	costFit := mlservice.CostFitScore(profile, university)

	output := &Output{
		UniversityID:   university.ID,
		UniversityName: university.Name,
		Reasons:        mlservice.GenerateReasons(prediction, costFit),
		Prediction:     prediction,
		CostFitScore:   costFit,
	}

	h.logger.Info("explanation generated", map[string]interface{}{
		"universityId": university.ID,
		"reasonCount":  len(output.Reasons),
	})

	return output, nil
}

func classifyError(err error) (string, int32) {
	switch {
	case errors.Is(err, mlservice.ErrModelTimeout):
		return "MODEL_TIMEOUT", 2
	case errors.Is(err, mlservice.ErrModelUnavailable):
		return "MODEL_UNAVAILABLE", 3
	case errors.Is(err, ErrUniversityNotFound):
		return "UNIVERSITY_NOT_FOUND", 0
	case errors.Is(err, ErrInvalidArgument):
		return "INVALID_ARGUMENT", 0
	case errors.Is(err, ErrInvalidProfile):
		return "INVALID_PROFILE", 0
	default:
		return "UNKNOWN_ERROR", 0
	}
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	if retries > 0 {
		_, _ = client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(errorCode + ": " + errorMessage).
			Send(context.Background())
		return
	}

	_, _ = client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
