// internal/workers/profile/validate-profile/handler.go
package validateprofile

import (
	"context"
	"encoding/json"
	"errors"

	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-profile"

	OperationPredict   = "predict"
	OperationRecommend = "recommend"
)

var (
	ErrInvalidProfile = errors.New("INVALID_PROFILE")
)

type Handler struct {
	config    *Config
	validator *validation.ProfileValidator
	logger    logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		validator: validation.NewProfileValidator(config.MaxPreferredCountries),
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
		h.failJob(client, job, "INVALID_PROFILE", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.ProfileData == nil {
		input.ProfileData = map[string]interface{}{}
	}

	profile, result := h.validator.ValidateProfile(input.ProfileData)

	validationErrors := result.Errors
	if result.Valid {
		switch input.Operation {
		case OperationPredict:
			validationErrors = append(validationErrors, validation.CheckPredictionReady(profile)...)
		case OperationRecommend:
			validationErrors = append(validationErrors, validation.CheckRecommendationReady(profile)...)
		}
	}

	isValid := len(validationErrors) == 0
	h.logger.Info("profile validation completed", map[string]interface{}{
		"isValid":    isValid,
		"operation":  input.Operation,
		"errorCount": len(validationErrors),
	})

	if validationErrors == nil {
		validationErrors = []validation.ValidationError{}
	}

	output := &Output{
		IsValid:          isValid,
		ValidationErrors: validationErrors,
	}
	if isValid {
		output.Profile = profile
	}
	return output, nil
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
