// internal/workers/records/save-recommendation-record/handler.go
package saverecommendationrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"studyabroad-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "save-recommendation-record"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateSession     = errors.New("DUPLICATE_SESSION")
	ErrInvalidArgument      = errors.New("INVALID_ARGUMENT")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		if errors.Is(err, ErrDatabaseInsertFailed) {
			errorCode = "DATABASE_INSERT_FAILED"
			retries = 3
		} else if errors.Is(err, ErrDuplicateSession) {
			errorCode = "DUPLICATE_SESSION"
		} else if errors.Is(err, ErrInvalidArgument) {
			errorCode = "INVALID_ARGUMENT"
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidArgument)
	}
	if len(input.Recommendations) == 0 {
		return nil, fmt.Errorf("%w: recommendations must not be empty", ErrInvalidArgument)
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	} else {
		var exists bool
		err := h.db.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM recommendation_sessions
				WHERE session_id = $1
			)`, sessionID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
		}
		if exists {
			return nil, fmt.Errorf("%w: session %s already stored", ErrDuplicateSession, sessionID)
		}
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)

	summaryJSON, err := json.Marshal(input.Summary)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal summary: %v", ErrDatabaseInsertFailed, err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrDatabaseInsertFailed, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recommendation_sessions (
			session_id, user_id, status, item_count, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		sessionID,
		input.UserID,
		"completed",
		len(input.Recommendations),
		summaryJSON,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: session insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	for _, item := range input.Recommendations {
		reasonsJSON, err := json.Marshal(item.Reasons)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to marshal reasons: %v", ErrDatabaseInsertFailed, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO recommendation_items (
				session_id, university_id, university_name, ranking_position,
				admission_probability, cost_fit_score, overall_score,
				confidence_level, reasons
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			sessionID,
			item.UniversityID,
			item.UniversityName,
			item.RankingPosition,
			item.AdmissionProbability,
			item.CostFitScore,
			item.OverallScore,
			string(item.ConfidenceLevel),
			reasonsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: item insert failed for %s: %v", ErrDatabaseInsertFailed, item.UniversityID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit failed: %v", ErrDatabaseInsertFailed, err)
	}

	h.logger.Info("recommendation session stored", map[string]interface{}{
		"sessionId": sessionID,
		"userId":    input.UserID,
		"itemCount": len(input.Recommendations),
	})

	return &Output{
		SessionID: sessionID,
		Status:    "completed",
		ItemCount: len(input.Recommendations),
		CreatedAt: createdAt,
	}, nil
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
		"retries":      retries,
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
