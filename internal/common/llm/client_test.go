// internal/common/llm/client_test.go
package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4-turbo-preview",
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]interface{}{"role": "assistant", "content": content},
		}},
		"usage": map[string]interface{}{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: server.URL + "/",
	}, server.Client(), logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestClient_Complete_Success(t *testing.T) {
	var received map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("Summary: hello")))
	})

	out, err := client.Complete(context.Background(), Request{
		Operation:   "generate-response",
		Model:       "gpt-4-turbo-preview",
		System:      "system prompt",
		User:        "user prompt",
		Temperature: 0.7,
		MaxTokens:   4000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Summary: hello", out)

	assert.Equal(t, "gpt-4-turbo-preview", received["model"])
	assert.Equal(t, 0.7, received["temperature"])
	assert.Equal(t, float64(4000), received["max_tokens"])
	messages := received["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user prompt", messages[1].(map[string]interface{})["content"])
}

func TestClient_Complete_NotConfigured(t *testing.T) {
	client := NewClient(config.OpenAIConfig{}, nil, logger.NewNoOpLogger())

	_, err := client.Complete(context.Background(), Request{Model: "gpt-3.5-turbo"})
	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeLLMNotConfigured, stdErr.Code)
	assert.Equal(t, "OpenAI API key is not configured", stdErr.Message)
}

func TestClient_Complete_EmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("   ")))
	})

	_, err := client.Complete(context.Background(), Request{Model: "gpt-3.5-turbo"})
	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeLLMEmptyResponse, stdErr.Code)
}

func TestClient_Complete_APIError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"bad request", http.StatusBadRequest, false},
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"boom","type":"invalid_request_error"}}`))
			})

			_, err := client.Complete(context.Background(), Request{Model: "gpt-3.5-turbo"})
			stdErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeLLMRequestFailed, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

func TestClient_Complete_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(completionBody("late")))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, Request{Model: "gpt-3.5-turbo"})
	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeLLMTimeout, stdErr.Code)
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON("Here you go: {\"a\":1} hope it helps"))
	assert.Equal(t, "plain", CleanJSON("  plain  "))
}
