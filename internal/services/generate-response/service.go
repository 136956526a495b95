// Package generateresponse drafts client emails and investment proposals with the LLM
// and splits the reply into its labeled sections.
package generateresponse

import (
	"context"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/llm"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/prompts"
	"advisor-ai/pkg/sections"
)

const Operation = "generate-response"

type Service struct {
	config *Config
	llm    llm.Completer
	logger logger.Logger
	parser *sections.Parser
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		llm:    deps.LLM,
		logger: deps.Logger,
		parser: sections.NewParser(),
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	clientData := ParseClientContext(input.ClientContext)
	s.logger.Info("Generating response", map[string]interface{}{
		"responseType": input.ResponseType,
		"clientName":   clientData.Name,
	})

	userPrompt, err := prompts.GenerationUserPrompt(clientData, input.Prompt, clientData.AdditionalContext, input.ResponseType)
	if err != nil {
		return nil, errors.NewTemplateRenderFailedError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	reply, err := s.llm.Complete(ctx, llm.Request{
		Operation:   Operation,
		Model:       s.config.Model,
		System:      prompts.SystemPromptFor(input.ResponseType),
		User:        userPrompt,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	result := s.parser.Parse(reply)
	if err := result.Validate(); err != nil {
		s.logger.Warn("Generated response is missing sections", map[string]interface{}{
			"hasSummary": result.Summary != "",
			"hasBody":    result.EmailResponse != "",
		})
		return nil, errors.NewInvalidResponseFormatError(err)
	}

	s.logger.Info("Response generated", map[string]interface{}{
		"category":         result.Category,
		"missingInfoCount": len(result.MissingInfo),
	})

	return &Output{
		Summary:       result.Summary,
		EmailResponse: result.EmailResponse,
		Category:      result.Category,
		MissingInfo:   result.MissingInfo,
	}, nil
}
