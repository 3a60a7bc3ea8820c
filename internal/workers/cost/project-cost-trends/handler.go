// internal/workers/cost/project-cost-trends/handler.go
package projectcosttrends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"studyabroad-workers/internal/common/catalog"
	"studyabroad-workers/internal/common/costing"
	"studyabroad-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "project-cost-trends"
)

var (
	ErrInvalidArgument    = errors.New("INVALID_ARGUMENT")
	ErrUniversityNotFound = errors.New("UNIVERSITY_NOT_FOUND")
)

type Handler struct {
	config  *Config
	catalog catalog.Store
	logger  logger.Logger
}

func NewHandler(config *Config, store catalog.Store, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		catalog: store,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		case errors.Is(err, ErrInvalidArgument):
			code = "INVALID_ARGUMENT"
		}
		h.failJob(client, job, code, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.UniversityID) == "" {
		return nil, fmt.Errorf("%w: universityId is required", ErrInvalidArgument)
	}

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

	university, err := h.catalog.Get(ctx, input.UniversityID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUniversityNotFound, input.UniversityID)
		}
		return nil, err
	}

	projection, err := costing.Project(university, years, rate)
	if err != nil {
		if errors.Is(err, costing.ErrUnknownTuition) {
			return nil, fmt.Errorf("%w: no tuition on record for %s", ErrUniversityNotFound, university.ID)
		}
		if errors.Is(err, costing.ErrInvalidYears) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		return nil, err
	}

	h.logger.Info("cost trend projected", map[string]interface{}{
		"universityId": university.ID,
		"years":        years,
		"ratePercent":  rate,
	})

	return &Output{Projection: projection}, nil
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
