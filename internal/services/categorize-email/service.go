// Package categorizeemail assigns an inbound email to one of the caller's categories.
package categorizeemail

import (
	"context"
	"strings"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/llm"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/prompts"
)

const Operation = "categorize-email"

type Service struct {
	config *Config
	llm    llm.Completer
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		llm:    deps.LLM,
		logger: deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.EmailContent) == "" || len(input.Categories) == 0 {
		return nil, errors.NewValidationError("emailContent and categories are required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	reply, err := s.llm.Complete(ctx, llm.Request{
		Operation:   Operation,
		Model:       s.config.Model,
		System:      prompts.CategoryPrompt(input.Categories),
		User:        input.EmailContent,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	category := NormalizeCategory(reply)
	for _, c := range input.Categories {
		if NormalizeCategory(c) == category {
			s.logger.Info("Email categorized", map[string]interface{}{"category": c})
			return &Output{Category: c}, nil
		}
	}

	s.logger.Warn("Model returned an unknown category", map[string]interface{}{
		"reply":      reply,
		"categories": input.Categories,
	})
	return nil, errors.NewInvalidCategoryError(reply)
}

// NormalizeCategory undoes the prompt's hyphen-to-space rendering of category names.
func NormalizeCategory(reply string) string {
	category := strings.ToLower(strings.TrimSpace(reply))
	category = strings.TrimRight(category, ".")
	return strings.Join(strings.Fields(category), "-")
}
