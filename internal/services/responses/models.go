// internal/services/responses/models.go
package responses

import (
	"context"
	"encoding/json"

	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/models"
)

// SaveInput is a generated response the advisor keeps against a client.
type SaveInput struct {
	ClientID     string              `json:"client_id"`
	Summary      string              `json:"summary"`
	Content      string              `json:"content"`
	Category     string              `json:"category"`
	MissingInfo  []string            `json:"missing_info"`
	ResponseType models.ResponseType `json:"response_type"`
	FullQuery    json.RawMessage     `json:"full_query,omitempty"`
}

type SendInput struct {
	Subject string `json:"subject"`
	ReplyTo string `json:"reply_to,omitempty"`
}

type SendOutput struct {
	MessageID string `json:"message_id"`
	To        string `json:"to"`
}

type Store interface {
	Create(ctx context.Context, resp *models.Response) error
	Get(ctx context.Context, id string) (*models.Response, error)
	ListByClient(ctx context.Context, clientID string, limit int) ([]*models.Response, error)
	UpdateStatus(ctx context.Context, id string, status models.ResponseStatus) error
}

type ClientStore interface {
	Get(ctx context.Context, userID, id string) (*models.Client, error)
	Touch(ctx context.Context, userID, id string) error
}

type Mailer interface {
	SendEmail(ctx context.Context, msg models.EmailMessage) (string, error)
}

type ServiceDependencies struct {
	Responses Store
	Clients   ClientStore
	// Mailer is nil when SES is disabled; Send then fails with EXTERNAL_SERVICE_ERROR.
	Mailer Mailer
	Logger logger.Logger
}
