// internal/workers/infrastructure/build-response/handler_test.go
package buildresponse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"studyabroad-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{
		TemplateRegistry: "test_registry.json",
		CacheTTL:         5 * time.Minute,
		AppVersion:       "1.0.0",
	}
}

func createTestHandler(t *testing.T, config *Config) *Handler {
	if config == nil {
		config = createTestConfig()
	}
	return NewHandler(config, logger.NewTestLogger(t))
}

func createTemplateRegistry(templates []TemplateDefinition) string {
	registry := struct {
		Templates []TemplateDefinition `json:"templates"`
	}{Templates: templates}

	data, _ := json.MarshalIndent(registry, "", "  ")
	return string(data)
}

func writeTempRegistry(t *testing.T, templates []TemplateDefinition) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "test_registry_*.json")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(createTemplateRegistry(templates))
	require.NoError(t, err)
	tmpFile.Close()
	return tmpFile.Name()
}

func createTestInput(templateId, requestId string, data map[string]interface{}) *Input {
	return &Input{
		TemplateId: templateId,
		RequestId:  requestId,
		Data:       data,
	}
}

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		templates      []TemplateDefinition
		input          *Input
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "prediction response build with validation",
			templates: []TemplateDefinition{
				{
					ID:   "prediction-response",
					Type: "prediction-response",
					Schema: map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"universityId":    map[string]interface{}{"type": "string"},
							"universityName":  map[string]interface{}{"type": "string"},
							"probability":     map[string]interface{}{"type": "number"},
							"confidenceLevel": map[string]interface{}{"type": "string"},
						},
						"required": []string{"universityId", "probability"},
					},
					Template: map[string]interface{}{
						"prediction": map[string]interface{}{
							"universityId":    "{{universityId}}",
							"universityName":  "{{universityName}}",
							"probability":     "{{probability}}",
							"confidenceLevel": "{{confidenceLevel}}",
						},
						"source": "admission-model",
					},
					Version: "1.0",
				},
			},
			input: createTestInput("prediction-response", "req-123", map[string]interface{}{
				"universityId":    "u-001",
				"universityName":  "Northfield University",
				"probability":     0.72,
				"confidenceLevel": "high",
			}),
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "req-123", output.Response.RequestId)
				assert.Equal(t, "success", output.Response.Status)
				assert.Equal(t, "1.0.0", output.Response.Metadata.Version)
				assert.NotEmpty(t, output.Response.Metadata.Timestamp)

				prediction := output.Response.Data["prediction"].(map[string]interface{})
				assert.Equal(t, "u-001", prediction["universityId"])
				assert.Equal(t, "Northfield University", prediction["universityName"])
				assert.Equal(t, 0.72, prediction["probability"])
				assert.Equal(t, "high", prediction["confidenceLevel"])
				assert.Equal(t, "admission-model", output.Response.Data["source"])
			},
		},
		{
			name: "minimal template without schema",
			templates: []TemplateDefinition{
				{
					ID:       "simple-template",
					Type:     "simple",
					Schema:   map[string]interface{}{},
					Template: map[string]interface{}{"message": "{{text}}"},
					Version:  "1.0",
				},
			},
			input: createTestInput("simple-template", "req-456", map[string]interface{}{
				"text": "Hello World",
			}),
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "Hello World", output.Response.Data["message"])
			},
		},
		{
			name: "integer input coerced to float64",
			templates: []TemplateDefinition{
				{
					ID:       "count-template",
					Type:     "count",
					Template: map[string]interface{}{"total": "{{totalConsidered}}"},
					Version:  "1.0",
				},
			},
			input: createTestInput("count-template", "req-789", map[string]interface{}{
				"totalConsidered": 42,
			}),
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, float64(42), output.Response.Data["total"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			config.TemplateRegistry = writeTempRegistry(t, tt.templates)
			handler := createTestHandler(t, config)

			output, err := handler.Execute(context.Background(), tt.input)

			require.NoError(t, err)
			require.NotNil(t, output)
			assert.NotEmpty(t, output.Response.Metadata.Timestamp)

			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestHandler_NestedDataSubstitution(t *testing.T) {
	templates := []TemplateDefinition{
		{
			ID:   "recommendation-response",
			Type: "recommendation-response",
			Template: map[string]interface{}{
				"recommendation": map[string]interface{}{
					"top": map[string]interface{}{
						"universityId": "{{top.universityId}}",
						"overallScore": "{{top.overallScore}}",
					},
					"summary": map[string]interface{}{
						"returned": "{{summary.returned}}",
					},
				},
			},
			Version: "1.0",
		},
	}

	config := createTestConfig()
	config.TemplateRegistry = writeTempRegistry(t, templates)
	handler := createTestHandler(t, config)

	input := createTestInput("recommendation-response", "req-789", map[string]interface{}{
		"top": map[string]interface{}{
			"universityId": "u-001",
			"overallScore": 0.81,
		},
		"summary": map[string]interface{}{
			"returned": 5,
		},
	})

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, output)

	recommendation, ok := output.Response.Data["recommendation"].(map[string]interface{})
	require.True(t, ok, "recommendation should be a map")

	top, ok := recommendation["top"].(map[string]interface{})
	require.True(t, ok, "top should be a map")
	assert.Equal(t, "u-001", top["universityId"])
	assert.Equal(t, 0.81, top["overallScore"])

	summary, ok := recommendation["summary"].(map[string]interface{})
	require.True(t, ok, "summary should be a map")
	assert.Equal(t, float64(5), summary["returned"])
}

func TestHandler_Execute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name          string
		templates     []TemplateDefinition
		input         *Input
		expectedError string
	}{
		{
			name: "template not found",
			templates: []TemplateDefinition{
				{
					ID:       "other-template",
					Type:     "other",
					Template: map[string]interface{}{},
					Version:  "1.0",
				},
			},
			input:         createTestInput("non-existent-template", "req-123", map[string]interface{}{}),
			expectedError: "TEMPLATE_NOT_FOUND",
		},
		{
			name: "schema validation failed",
			templates: []TemplateDefinition{
				{
					ID:   "validated-template",
					Type: "validated",
					Schema: map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"requiredField": map[string]interface{}{"type": "string"},
						},
						"required": []string{"requiredField"},
					},
					Template: map[string]interface{}{},
					Version:  "1.0",
				},
			},
			input: createTestInput("validated-template", "req-123", map[string]interface{}{
				"optionalField": "value",
			}),
			expectedError: "RESPONSE_VALIDATION_FAILED: data validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			config.TemplateRegistry = writeTempRegistry(t, tt.templates)
			handler := createTestHandler(t, config)

			output, err := handler.Execute(context.Background(), tt.input)

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
			assert.Nil(t, output)
		})
	}
}

func TestHandler_Execute_RegistryFileErrors(t *testing.T) {
	t.Run("registry file not found", func(t *testing.T) {
		config := createTestConfig()
		config.TemplateRegistry = "/non/existent/path/registry.json"
		handler := createTestHandler(t, config)

		input := createTestInput("any-template", "req-123", map[string]interface{}{})
		output, err := handler.Execute(context.Background(), input)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "read registry")
		assert.Nil(t, output)
	})

	t.Run("invalid registry JSON", func(t *testing.T) {
		tmpFile, err := os.CreateTemp("", "test_invalid_registry_*.json")
		require.NoError(t, err)
		defer os.Remove(tmpFile.Name())

		_, err = tmpFile.WriteString("invalid json content")
		require.NoError(t, err)
		tmpFile.Close()

		config := createTestConfig()
		config.TemplateRegistry = tmpFile.Name()
		handler := createTestHandler(t, config)

		input := createTestInput("any-template", "req-123", map[string]interface{}{})
		output, err := handler.Execute(context.Background(), input)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "parse registry")
		assert.Nil(t, output)
	})
}

func TestHandler_LoadTemplate(t *testing.T) {
	templates := []TemplateDefinition{
		{
			ID:       "template-1",
			Type:     "type-1",
			Template: map[string]interface{}{"key": "value1"},
			Version:  "1.0",
		},
		{
			ID:       "template-2",
			Type:     "type-2",
			Template: map[string]interface{}{"key": "value2"},
			Version:  "1.0",
		},
	}

	config := createTestConfig()
	config.TemplateRegistry = writeTempRegistry(t, templates)
	handler := createTestHandler(t, config)

	t.Run("template found", func(t *testing.T) {
		template, err := handler.loadTemplate("template-1")
		assert.NoError(t, err)
		assert.Equal(t, "template-1", template.ID)
		assert.Equal(t, "type-1", template.Type)
	})

	t.Run("template not found", func(t *testing.T) {
		template, err := handler.loadTemplate("non-existent")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrTemplateNotFound))
		assert.Nil(t, template)
	})

	t.Run("caching works", func(t *testing.T) {
		// First call should load from file
		template1, err := handler.loadTemplate("template-2")
		assert.NoError(t, err)
		assert.Equal(t, "template-2", template1.ID)

		// Second call should use cache
		template2, err := handler.loadTemplate("template-2")
		assert.NoError(t, err)
		assert.Equal(t, template1, template2) // Same pointer indicates cache hit
	})
}

func TestHandler_ValidateData(t *testing.T) {
	handler := createTestHandler(t, nil)

	tests := []struct {
		name    string
		schema  map[string]interface{}
		data    map[string]interface{}
		wantErr bool
	}{
		{
			name: "valid data",
			schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "string"},
					"cgpa": map[string]interface{}{"type": "number"},
				},
				"required": []string{"name"},
			},
			data: map[string]interface{}{
				"name": "John",
				"cgpa": 3.4,
			},
			wantErr: false,
		},
		{
			name: "missing required field",
			schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "string"},
				},
				"required": []string{"name"},
			},
			data: map[string]interface{}{
				"cgpa": 3.4,
			},
			wantErr: true,
		},
		{
			name: "wrong data type",
			schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cgpa": map[string]interface{}{"type": "number"},
				},
			},
			data: map[string]interface{}{
				"cgpa": "not-a-number",
			},
			wantErr: true,
		},
		{
			name:    "empty schema",
			schema:  map[string]interface{}{},
			data:    map[string]interface{}{"any": "data"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler.validateData(tt.schema, tt.data)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHandler_EdgeCases(t *testing.T) {
	t.Run("cache TTL expiration", func(t *testing.T) {
		templates := []TemplateDefinition{
			{
				ID:       "test-template",
				Type:     "test",
				Template: map[string]interface{}{},
				Version:  "1.0",
			},
		}

		config := createTestConfig()
		config.TemplateRegistry = writeTempRegistry(t, templates)
		config.CacheTTL = 1 * time.Millisecond
		handler := createTestHandler(t, config)

		template1, err := handler.loadTemplate("test-template")
		assert.NoError(t, err)

		time.Sleep(2 * time.Millisecond)

		template2, err := handler.loadTemplate("test-template")
		assert.NoError(t, err)
		assert.NotEqual(t, fmt.Sprintf("%p", template1), fmt.Sprintf("%p", template2))
	})

	t.Run("empty data with required schema", func(t *testing.T) {
		templates := []TemplateDefinition{
			{
				ID:   "required-template",
				Type: "required",
				Schema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"field": map[string]interface{}{"type": "string"},
					},
					"required": []string{"field"},
				},
				Template: map[string]interface{}{},
				Version:  "1.0",
			},
		}

		config := createTestConfig()
		config.TemplateRegistry = writeTempRegistry(t, templates)
		handler := createTestHandler(t, config)

		input := createTestInput("required-template", "req-123", map[string]interface{}{})
		output, err := handler.Execute(context.Background(), input)

		assert.Error(t, err)
		assert.Nil(t, output)
	})

	t.Run("missing placeholder substitutes nil", func(t *testing.T) {
		templates := []TemplateDefinition{
			{
				ID:       "sparse-template",
				Type:     "sparse",
				Template: map[string]interface{}{"present": "{{a}}", "absent": "{{b}}"},
				Version:  "1.0",
			},
		}

		config := createTestConfig()
		config.TemplateRegistry = writeTempRegistry(t, templates)
		handler := createTestHandler(t, config)

		input := createTestInput("sparse-template", "req-123", map[string]interface{}{"a": "here"})
		output, err := handler.Execute(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, "here", output.Response.Data["present"])
		assert.Nil(t, output.Response.Data["absent"])
	})
}

func TestHandler_FullWorkflow(t *testing.T) {
	templates := []TemplateDefinition{
		{
			ID:   "recommendation-list-response",
			Type: "recommendation-response",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"recommendations": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"universityId": map[string]interface{}{"type": "string"},
								"overallScore": map[string]interface{}{"type": "number"},
							},
							"required": []string{"universityId", "overallScore"},
						},
					},
					"totalCount": map[string]interface{}{"type": "number"},
				},
				"required": []string{"recommendations", "totalCount"},
			},
			Template: map[string]interface{}{
				"results": map[string]interface{}{
					"recommendations": "{{recommendations}}",
					"pagination": map[string]interface{}{
						"total": "{{totalCount}}",
						"page":  1,
						"size":  20,
					},
					"metadata": map[string]interface{}{
						"sessionId": "{{requestId}}",
					},
				},
			},
			Version: "1.0",
		},
	}

	config := createTestConfig()
	config.TemplateRegistry = writeTempRegistry(t, templates)
	handler := createTestHandler(t, config)

	recommendationsData := []interface{}{
		map[string]interface{}{
			"universityId": "u-001",
			"overallScore": 0.81,
		},
		map[string]interface{}{
			"universityId": "u-002",
			"overallScore": 0.64,
		},
	}

	input := createTestInput("recommendation-list-response", "session-123", map[string]interface{}{
		"recommendations": recommendationsData,
		"totalCount":      float64(2),
		"requestId":       "session-123",
	})

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, output)

	assert.Equal(t, "session-123", output.Response.RequestId)
	assert.Equal(t, "success", output.Response.Status)

	results := output.Response.Data["results"].(map[string]interface{})

	recommendations, ok := results["recommendations"].([]interface{})
	require.True(t, ok)
	assert.Len(t, recommendations, 2)

	pagination := results["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["total"])

	metadata := results["metadata"].(map[string]interface{})
	assert.Equal(t, "session-123", metadata["sessionId"])
}

func BenchmarkHandler_Execute(b *testing.B) {
	templates := []TemplateDefinition{
		{
			ID:   "benchmark-template",
			Type: "benchmark",
			Template: map[string]interface{}{
				"data": "{{value}}",
			},
			Version: "1.0",
		},
	}

	registryContent := createTemplateRegistry(templates)
	tmpFile, err := os.CreateTemp("", "benchmark_registry_*.json")
	require.NoError(b, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(registryContent)
	require.NoError(b, err)
	tmpFile.Close()

	config := &Config{
		TemplateRegistry: tmpFile.Name(),
		CacheTTL:         5 * time.Minute,
		AppVersion:       "1.0.0",
	}
	handler := NewHandler(config, logger.NewTestLogger(b))

	input := createTestInput("benchmark-template", "benchmark-req", map[string]interface{}{
		"value": "benchmark data",
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = handler.Execute(context.Background(), input)
	}
}
