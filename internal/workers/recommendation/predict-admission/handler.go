// internal/workers/recommendation/predict-admission/handler.go
package predictadmission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"studyabroad-workers/internal/common/catalog"
	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/common/metrics"
	"studyabroad-workers/internal/common/mlservice"
	"studyabroad-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "predict-admission"
)

var (
	ErrInvalidProfile     = errors.New("INVALID_PROFILE")
	ErrInvalidArgument    = errors.New("INVALID_ARGUMENT")
	ErrUniversityNotFound = errors.New("UNIVERSITY_NOT_FOUND")
)

type Handler struct {
	config    *Config
	validator *validation.ProfileValidator
	predictor *mlservice.SinglePredictor
	logger    logger.Logger
}

func NewHandler(config *Config, predictor *mlservice.SinglePredictor, log logger.Logger) *Handler {
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
		h.failJob(client, job, "PARSE_ERROR", err.Error(), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	start := time.Now()
	output, err := h.execute(ctx, &input)
	metrics.ModelCallDuration.WithLabelValues("predict").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("failed").Inc()
		code, retries := classifyError(err)
		h.failJob(client, job, code, err.Error(), retries)
		return
	}

	metrics.PredictionsTotal.WithLabelValues("success").Inc()
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

	prediction, err := h.predictor.Predict(ctx, profile, input.UniversityID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUniversityNotFound, input.UniversityID)
		}
		return nil, err
	}

	h.logger.Info("prediction completed", map[string]interface{}{
		"universityId": prediction.UniversityID,
		"probability":  prediction.AdmissionProbability,
		"confidence":   prediction.ConfidenceScore,
	})

	// Budget fit commentary is produced by the explanation worker, which
	// has the resolved university at hand; a neutral fit keeps it out here.
	return &Output{
		Prediction:      prediction,
		ConfidenceLevel: h.predictor.ConfidenceLevelFor(prediction.ConfidenceScore),
		Reasons:         mlservice.GenerateReasons(prediction, 1.0),
	}, nil
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
