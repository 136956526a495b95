// internal/services/analysis-response/models.go
package analysisresponse

import (
	"context"

	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/models"
)

type Input struct {
	EmailAnalysisID string                `json:"emailAnalysisId"`
	AdvisorData     models.AdvisorProfile `json:"advisorData"`
	UserID          string                `json:"-"`
}

type Output struct {
	PopulatedPrompt string `json:"populatedPrompt"`
}

type AnalysisReader interface {
	Get(ctx context.Context, id string) (*models.EmailAnalysisRecord, error)
}

type ClientReader interface {
	Get(ctx context.Context, userID, id string) (*models.Client, error)
}

type DocumentLister interface {
	ListByClient(ctx context.Context, clientID string) ([]*models.Document, error)
}

type NoteLister interface {
	ListByClient(ctx context.Context, clientID string, limit int) ([]*models.Note, error)
}

type TaskLister interface {
	ListByClient(ctx context.Context, clientID string, limit int) ([]*models.Task, error)
}

type ServiceDependencies struct {
	Analyses  AnalysisReader
	Clients   ClientReader
	Documents DocumentLister
	Notes     NoteLister
	Tasks     TaskLister
	Logger    logger.Logger
}
