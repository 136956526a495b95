// Package analyzeemail turns a raw inbound email into a structured analysis,
// files it against the sender's client record and raises escalations.
package analyzeemail

import (
	"context"
	"encoding/json"
	"strings"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/llm"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/common/validation"
	"advisor-ai/internal/models"
	"advisor-ai/internal/prompts"
)

const Operation = "analyze-email"

type Service struct {
	config   *Config
	llm      llm.Completer
	clients  ClientStore
	analyses AnalysisStore
	notifier Notifier
	logger   logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		llm:      deps.LLM,
		clients:  deps.Clients,
		analyses: deps.Analyses,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.EmailContent) == "" {
		return nil, errors.NewValidationError("emailContent is required")
	}
	if input.UserID == "" {
		return nil, errors.NewValidationError("userId is required")
	}

	analysis, err := s.analyze(ctx, input.EmailContent)
	if err != nil {
		return nil, err
	}
	out := &Output{Analysis: *analysis}

	client, created, err := s.createOrGetClient(ctx, input.UserID, analysis.SenderDetails)
	if err != nil {
		return nil, err
	}
	if client == nil {
		s.logger.Info("No sender email, analysis not stored", map[string]interface{}{
			"relationship": analysis.SenderDetails.Relationship,
		})
		return out, nil
	}
	out.ClientID = client.ID
	out.ClientCreated = created

	record := &models.EmailAnalysisRecord{
		ClientID:      client.ID,
		EmailAnalysis: *analysis,
		RawEmail:      input.EmailContent,
	}
	if err := s.analyses.Create(ctx, record); err != nil {
		return nil, err
	}
	out.AnalysisID = record.ID

	if analysis.NeedsEscalation() {
		out.Escalated = s.escalate(ctx, input.UserID, client, record)
	}

	s.logger.Info("Email analysed", map[string]interface{}{
		"analysisId":    record.ID,
		"clientId":      client.ID,
		"clientCreated": created,
		"intent":        analysis.EmailIntent.Category,
		"urgency":       analysis.EmailIntent.Urgency,
		"escalated":     out.Escalated,
	})
	return out, nil
}

func (s *Service) analyze(ctx context.Context, content string) (*models.EmailAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	reply, err := s.llm.Complete(ctx, llm.Request{
		Operation:   Operation,
		Model:       s.config.Model,
		System:      prompts.EmailAnalysisPrompt(),
		User:        content,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	doc := []byte(llm.CleanJSON(reply))
	if result := analysisSchema.ValidateJSON(doc); !result.Valid {
		s.logger.Warn("Email analysis failed schema validation", map[string]interface{}{
			"errors": result.GetErrorMessages(),
		})
		return nil, errors.NewInvalidResponseFormatError(result)
	}

	var analysis models.EmailAnalysis
	if err := json.Unmarshal(doc, &analysis); err != nil {
		return nil, errors.NewInvalidResponseFormatError(err)
	}
	return &analysis, nil
}

// createOrGetClient returns nil when the sender has no usable email address.
func (s *Service) createOrGetClient(ctx context.Context, userID string, sender models.SenderDetails) (*models.Client, bool, error) {
	if sender.Email == nil {
		return nil, false, nil
	}
	email := strings.TrimSpace(*sender.Email)
	if !validation.ValidateEmail(email) {
		return nil, false, nil
	}

	existing, err := s.clients.GetByEmail(ctx, userID, email)
	if err == nil {
		return existing, false, nil
	}
	if stdErr, ok := errors.As(err); !ok || stdErr.Code != errors.ErrCodeResourceNotFound {
		return nil, false, err
	}

	name, surname := SplitSenderName(sender.Name)
	client := &models.Client{
		UserID:         userID,
		Name:           name,
		Surname:        surname,
		Email:          email,
		Status:         models.ClientStatusPending,
		PortfolioValue: 0,
		RiskProfile:    models.RiskModerate,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, false, err
	}
	return client, true, nil
}

// escalate publishes an alert; delivery failures are logged and do not fail the analysis.
func (s *Service) escalate(ctx context.Context, userID string, client *models.Client, record *models.EmailAnalysisRecord) bool {
	if s.notifier == nil {
		s.logger.Warn("Escalation needed but no notifier configured", map[string]interface{}{
			"analysisId": record.ID,
		})
		return false
	}

	_, err := s.notifier.PublishEscalation(ctx, models.Escalation{
		AnalysisID:         record.ID,
		ClientID:           client.ID,
		AdvisorID:          userID,
		SenderEmail:        client.Email,
		Summary:            record.EmailSummary,
		Urgency:            record.EmailIntent.Urgency,
		AssignedDepartment: record.RecommendedResponse.AssignedDepartment,
	})
	if err != nil {
		s.logger.Error("Failed to publish escalation", map[string]interface{}{
			"analysisId": record.ID,
			"error":      err.Error(),
		})
		return false
	}
	return true
}

// SplitSenderName uses the first word as name and the rest as surname.
func SplitSenderName(name *string) (string, string) {
	parts := []string{}
	if name != nil {
		parts = strings.Fields(*name)
	}
	if len(parts) == 0 {
		return "Unknown", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
