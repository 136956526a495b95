// Package analysisresponse fills the analysis-response prompt with a stored
// email analysis and everything on file for the client it belongs to.
package analysisresponse

import (
	"context"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/prompts"
)

type Service struct {
	analyses  AnalysisReader
	clients   ClientReader
	documents DocumentLister
	notes     NoteLister
	tasks     TaskLister
	logger    logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		analyses:  deps.Analyses,
		clients:   deps.Clients,
		documents: deps.Documents,
		notes:     deps.Notes,
		tasks:     deps.Tasks,
		logger:    deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.EmailAnalysisID == "" {
		return nil, errors.NewValidationError("emailAnalysisId is required")
	}

	analysis, err := s.analyses.Get(ctx, input.EmailAnalysisID)
	if err != nil {
		return nil, err
	}
	// The client lookup is scoped to the advisor, which also guards the analysis.
	client, err := s.clients.Get(ctx, input.UserID, analysis.ClientID)
	if err != nil {
		return nil, err
	}

	documents, err := s.documents.ListByClient(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByClient(ctx, client.ID, 0)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByClient(ctx, client.ID, 0)
	if err != nil {
		return nil, err
	}

	populated, err := prompts.RenderAnalysisResponse(prompts.AnalysisResponseData{
		Advisor:   input.AdvisorData,
		Analysis:  *analysis,
		Client:    *client,
		Documents: derefAll(documents),
		Notes:     derefAll(notes),
		Tasks:     derefAll(tasks),
	})
	if err != nil {
		return nil, errors.NewTemplateRenderFailedError(err)
	}

	s.logger.Info("Analysis response prompt populated", map[string]interface{}{
		"analysisId": analysis.ID,
		"clientId":   client.ID,
		"documents":  len(documents),
		"notes":      len(notes),
		"tasks":      len(tasks),
	})
	return &Output{PopulatedPrompt: populated}, nil
}

func derefAll[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}
