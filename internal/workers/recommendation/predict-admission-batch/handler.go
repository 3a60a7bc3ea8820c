// internal/workers/recommendation/predict-admission-batch/handler.go
package predictadmissionbatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
	TaskType = "predict-admission-batch"
)

var (
	ErrInvalidProfile  = errors.New("INVALID_PROFILE")
	ErrInvalidArgument = errors.New("INVALID_ARGUMENT")
)

type Handler struct {
	config    *Config
	validator *validation.ProfileValidator
	predictor *mlservice.SinglePredictor
	logger    logger.Logger
}

func NewHandler(config *Config, predictor *mlservice.SinglePredictor, log logger.Logger) *Handler {
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	return &Handler{
		config:    config,
		validator: validation.NewProfileValidator(config.MaxPreferredCountries),
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
		code := "INVALID_PROFILE"
		if errors.Is(err, ErrInvalidArgument) {
			code = "INVALID_ARGUMENT"
		}
		h.failJob(client, job, code, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// batchItem pairs a prediction outcome with its input position so results
// can be reassembled in request order regardless of completion order.
type batchItem struct {
	index      int
	prediction *models.PredictionResult
	failure    *models.FailureRecord
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.UniversityIDs) == 0 {
		return nil, fmt.Errorf("%w: universityIds must not be empty", ErrInvalidArgument)
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

	items := make([]batchItem, len(input.UniversityIDs))
	sem := make(chan struct{}, h.config.Concurrency)
	var wg sync.WaitGroup

	for i, universityID := range input.UniversityIDs {
		wg.Add(1)
		go func(index int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items[index] = h.predictOne(ctx, profile, index, id)
		}(i, universityID)
	}
	wg.Wait()

	output := &Output{
		Predictions: []models.PredictionResult{},
		Failures:    []models.FailureRecord{},
	}
	for _, item := range items {
		if item.prediction != nil {
			output.Predictions = append(output.Predictions, *item.prediction)
		} else if item.failure != nil {
			output.Failures = append(output.Failures, *item.failure)
		}
	}

	output.Summary = models.BatchSummary{
		TotalRequested:  len(input.UniversityIDs),
		SuccessfulCount: len(output.Predictions),
		FailedCount:     len(output.Failures),
	}

	h.logger.Info("batch prediction completed", map[string]interface{}{
		"totalRequested": output.Summary.TotalRequested,
		"successful":     output.Summary.SuccessfulCount,
		"failed":         output.Summary.FailedCount,
	})

	return output, nil
}

func (h *Handler) predictOne(ctx context.Context, profile *models.CandidateProfile, index int, universityID string) batchItem {
	prediction, err := h.predictor.Predict(ctx, profile, universityID)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("failed").Inc()
		return batchItem{index: index, failure: &models.FailureRecord{
			UniversityID: universityID,
			Reason:       failureReason(err),
			Message:      err.Error(),
		}}
	}

	metrics.PredictionsTotal.WithLabelValues("success").Inc()
	return batchItem{index: index, prediction: prediction}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return "UNIVERSITY_NOT_FOUND"
	case errors.Is(err, mlservice.ErrModelTimeout):
		return "MODEL_TIMEOUT"
	case errors.Is(err, mlservice.ErrModelUnavailable):
		return "MODEL_UNAVAILABLE"
	default:
		return "PREDICTION_FAILED"
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
