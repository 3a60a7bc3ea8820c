// Package mlservice talks to the admission scoring model and derives
// predictions and recommendation explanations from its output.
package mlservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"studyabroad-workers/internal/common/config"
	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/models"
)

var (
	ErrModelUnavailable = errors.New("MODEL_UNAVAILABLE")
	ErrModelTimeout     = errors.New("MODEL_TIMEOUT")
)

// ScoreResult is the raw model output for one (profile, university) pair.
type ScoreResult struct {
	Probability float64            `json:"probability"`
	Factors     map[string]float64 `json:"factors,omitempty"`
}

// ModelInfo describes the deployed scoring model.
type ModelInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Features  []string `json:"features,omitempty"`
	TrainedAt string   `json:"trainedAt,omitempty"`
}

// Scorer abstracts the admission scoring model so workers can be tested
// without a running model service.
type Scorer interface {
	Score(ctx context.Context, profile *models.CandidateProfile, university *models.University) (*ScoreResult, error)
	ModelInfo(ctx context.Context) (*ModelInfo, error)
}

// Client is the HTTP Scorer backed by the model service.
type Client struct {
	config config.MLServiceConfig
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg config.MLServiceConfig, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
		logger: log.WithFields(map[string]interface{}{"component": "mlservice"}),
	}
}

func (c *Client) Score(ctx context.Context, profile *models.CandidateProfile, university *models.University) (*ScoreResult, error) {
	requestBody := map[string]interface{}{
		"profile":    profile,
		"university": university,
	}

	var result ScoreResult
	if err := c.post(ctx, "/api/model/score", requestBody, &result); err != nil {
		return nil, err
	}

	c.logger.Debug("model score received", map[string]interface{}{
		"universityId": university.ID,
		"probability":  result.Probability,
	})

	return &result, nil
}

func (c *Client) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.config.BaseURL+"/api/model/info", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	c.setHeaders(req)

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrModelUnavailable, err)
	}
	return &info, nil
}

// HealthCheck verifies the model service responds.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.config.BaseURL+"/api/model/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrModelUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, requestBody, out interface{}) error {
	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	c.setHeaders(req)

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode error: %v", ErrModelUnavailable, err)
	}
	return nil
}

func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrModelTimeout
			}

			// Rewind the request body before re-sending
			if req.GetBody != nil {
				if body, err := req.GetBody(); err == nil {
					req.Body = body
				}
			}
		}

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return nil, ErrModelTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				return resp, nil
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, ErrModelTimeout
	}
	return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, lastErr)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("X-API-Key", c.config.APIKey)
	}
}
