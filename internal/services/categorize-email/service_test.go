// internal/services/categorize-email/service_test.go
package categorizeemail

import (
	"context"
	"strings"
	"testing"
	"time"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/llm"
	"advisor-ai/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func newTestService(t *testing.T, completer llm.Completer) *Service {
	return NewService(ServiceDependencies{LLM: completer, Logger: logger.NewTestLogger(t)},
		LoadConfig(config.OpenAIConfig{Timeout: 1000}))
}

var categories = []string{"investment-update", "tax-planning", "general-enquiry"}

func TestService_Execute(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		want     string
		wantCode errors.ErrorCode
	}{
		{name: "exact", reply: "tax-planning", want: "tax-planning"},
		{name: "spaced and cased", reply: "  Investment Update\n", want: "investment-update"},
		{name: "trailing period", reply: "General enquiry.", want: "general-enquiry"},
		{name: "unknown", reply: "complaints", wantCode: errors.ErrCodeInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := new(MockCompleter)
			completer.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
				return req.Model == "gpt-3.5-turbo" && req.Temperature == 0.3 && req.MaxTokens == 50 &&
					strings.Contains(req.System, "- investment update") && req.User == "Please rebalance"
			})).Return(tt.reply, nil)

			out, err := newTestService(t, completer).Execute(context.Background(), &Input{
				EmailContent: "Please rebalance",
				Categories:   categories,
			})
			if tt.wantCode != "" {
				stdErr, ok := errors.As(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, stdErr.Code)
				assert.Equal(t, "Failed to determine valid category", stdErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Category)
		})
	}
}

func TestService_Execute_SpacedCallerCategories(t *testing.T) {
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return("tax planning", nil)

	out, err := newTestService(t, completer).Execute(context.Background(), &Input{
		EmailContent: "How do I reduce my tax bill?",
		Categories:   []string{"Investment Update", "Tax Planning"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Tax Planning", out.Category, "the caller's spelling is returned")
}

func TestService_Execute_MissingParams(t *testing.T) {
	completer := new(MockCompleter)
	svc := newTestService(t, completer)

	for _, input := range []*Input{
		{Categories: categories},
		{EmailContent: "hi"},
	} {
		_, err := svc.Execute(context.Background(), input)
		stdErr, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
	}
	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(config.OpenAIConfig{CategoryModel: "gpt-4o-mini"})
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
