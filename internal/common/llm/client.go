// Package llm wraps the OpenAI chat completions API for the advisor services.
package llm

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/common/metrics"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Request is a single system+user chat completion.
type Request struct {
	Operation   string
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
}

// Completer returns the text of the first choice.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type Client struct {
	client     openai.Client
	configured bool
	logger     logger.Logger
}

// NewClient builds a client even without an API key so that callers get
// LLM_NOT_CONFIGURED per request instead of failing at startup.
func NewClient(cfg config.OpenAIConfig, httpClient *http.Client, log logger.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &Client{
		client:     openai.NewClient(opts...),
		configured: cfg.APIKey != "",
		logger:     log.With(map[string]interface{}{"component": "llm"}),
	}
}

func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if !c.configured {
		return "", errors.NewLLMNotConfiguredError()
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	metrics.LLMRequestDuration.WithLabelValues(req.Operation, req.Model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(req.Operation, req.Model, metrics.OutcomeError).Inc()
		c.logger.Error("completion failed", map[string]interface{}{
			"operation": req.Operation,
			"model":     req.Model,
			"error":     err.Error(),
		})
		return "", mapError(ctx, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.LLMRequestsTotal.WithLabelValues(req.Operation, req.Model, metrics.OutcomeError).Inc()
		return "", errors.NewLLMEmptyResponseError()
	}

	metrics.LLMRequestsTotal.WithLabelValues(req.Operation, req.Model, metrics.OutcomeSuccess).Inc()
	c.logger.Debug("completion received", map[string]interface{}{
		"operation":        req.Operation,
		"model":            req.Model,
		"completionTokens": resp.Usage.CompletionTokens,
		"promptTokens":     resp.Usage.PromptTokens,
	})

	return resp.Choices[0].Message.Content, nil
}

func mapError(ctx context.Context, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewLLMTimeoutError(err)
	}

	var apiErr *openai.Error
	if stderrors.As(err, &apiErr) {
		stdErr := errors.NewLLMRequestFailedError(err)
		// 4xx other than 429 are not retryable.
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests {
			stdErr.Retryable = false
		}
		stdErr.Metadata = map[string]interface{}{"status": apiErr.StatusCode}
		return stdErr
	}
	return errors.NewLLMRequestFailedError(err)
}

// CleanJSON strips markdown fences and prose around a JSON object.
func CleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
