// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name          string
		err           *StandardError
		wantCode      ErrorCode
		wantRetryable bool
	}{
		{
			name:          "invalid profile is not retryable",
			err:           NewInvalidProfileError("cgpa out of range"),
			wantCode:      ErrCodeInvalidProfile,
			wantRetryable: false,
		},
		{
			name:          "university not found is not retryable",
			err:           NewUniversityNotFoundError("u-999"),
			wantCode:      ErrCodeUniversityNotFound,
			wantRetryable: false,
		},
		{
			name:          "model unavailable is retryable",
			err:           NewModelUnavailableError(fmt.Errorf("connection refused")),
			wantCode:      ErrCodeModelUnavailable,
			wantRetryable: true,
		},
		{
			name:          "duplicate session is not retryable",
			err:           NewDuplicateSessionError("sess-123"),
			wantCode:      ErrCodeDuplicateSession,
			wantRetryable: false,
		},
		{
			name:          "notification send failure is retryable",
			err:           NewNotificationSendFailedError("recommendation-ready", fmt.Errorf("throttled")),
			wantCode:      ErrCodeNotificationSendFailed,
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantRetryable, tt.err.Retryable)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.Contains(t, tt.err.Error(), string(tt.wantCode))
		})
	}
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeModelUnavailable))
	assert.Equal(t, 3, GetRetryCount(ErrCodeSearchQueryFailed))
	assert.Equal(t, 3, GetRetryCount(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, 2, GetRetryCount(ErrCodeModelTimeout))
	assert.Equal(t, 2, GetRetryCount(ErrCodeQueryTimeout))
	assert.Equal(t, 2, GetRetryCount(ErrCodeSearchTimeout))
	assert.Equal(t, 0, GetRetryCount(ErrCodeInvalidProfile))
	assert.Equal(t, 0, GetRetryCount(ErrCodeDuplicateSession))
	assert.Equal(t, 0, GetRetryCount(ErrCodeResponseValidationFailed))
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable error carries retry budget", func(t *testing.T) {
		stdErr := NewModelUnavailableError(fmt.Errorf("dial tcp: connection refused"))
		bpmnErr := ConvertToBPMNError(stdErr)

		require.NotNil(t, bpmnErr)
		assert.Equal(t, "MODEL_UNAVAILABLE", bpmnErr.Code)
		assert.True(t, bpmnErr.Retryable)
		assert.Equal(t, 3, bpmnErr.Retries)
		assert.Equal(t, "MODEL_UNAVAILABLE", bpmnErr.ErrorVariables["originalErrorCode"])
	})

	t.Run("business error never retries", func(t *testing.T) {
		stdErr := NewInvalidArgumentError("years must be >= 1")
		bpmnErr := ConvertToBPMNError(stdErr)

		assert.Equal(t, "INVALID_ARGUMENT", bpmnErr.Code)
		assert.False(t, bpmnErr.Retryable)
		assert.Equal(t, 0, bpmnErr.Retries)
	})

	t.Run("unmapped code falls back to raw code", func(t *testing.T) {
		stdErr := NewBusinessRuleError("rule broken", "details")
		bpmnErr := ConvertToBPMNError(stdErr)

		assert.Equal(t, "BUSINESS_RULE_VIOLATION", bpmnErr.Code)
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidProfile))
	assert.Equal(t, "MODEL", GetErrorCategory(ErrCodeModelTimeout))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "CATALOG", GetErrorCategory(ErrCodeUniversityNotFound))
}

func TestToErrorVariables(t *testing.T) {
	bpmnErr := &BPMNError{
		Code:      "QUERY_TIMEOUT",
		Message:   "Database query timeout",
		Retryable: true,
		ErrorVariables: map[string]interface{}{
			"queryType": "getUserProfile",
		},
	}

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "QUERY_TIMEOUT", vars["errorCode"])
	assert.Equal(t, true, vars["retryable"])
	assert.Equal(t, "getUserProfile", vars["queryType"])
}
