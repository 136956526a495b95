// internal/services/analyze-email/models.go
package analyzeemail

import (
	"context"

	"advisor-ai/internal/common/llm"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/models"
)

type Input struct {
	EmailContent string `json:"emailContent"`
	// UserID is the advisor whose book the sender is matched against.
	UserID string `json:"userId"`
}

type Output struct {
	Analysis      models.EmailAnalysis `json:"analysis"`
	AnalysisID    string               `json:"analysisId,omitempty"`
	ClientID      string               `json:"clientId,omitempty"`
	ClientCreated bool                 `json:"clientCreated"`
	Escalated     bool                 `json:"escalated"`
}

type ClientStore interface {
	GetByEmail(ctx context.Context, userID, email string) (*models.Client, error)
	Create(ctx context.Context, c *models.Client) error
}

type AnalysisStore interface {
	Create(ctx context.Context, rec *models.EmailAnalysisRecord) error
}

type Notifier interface {
	PublishEscalation(ctx context.Context, e models.Escalation) (string, error)
}

type ServiceDependencies struct {
	LLM      llm.Completer
	Clients  ClientStore
	Analyses AnalysisStore
	// Notifier is optional; without it escalations are only logged.
	Notifier Notifier
	Logger   logger.Logger
}
