// Package responses stores generated responses, moves them through review and
// delivers approved ones to the client by email.
package responses

import (
	"context"
	stderrors "errors"
	"strings"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/models"
)

const defaultSubject = "A message from your financial advisor"

type Service struct {
	responses Store
	clients   ClientStore
	mailer    Mailer
	logger    logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		responses: deps.Responses,
		clients:   deps.Clients,
		mailer:    deps.Mailer,
		logger:    deps.Logger,
	}
}

func (s *Service) Save(ctx context.Context, userID string, input *SaveInput) (*models.Response, error) {
	if input.ClientID == "" || strings.TrimSpace(input.Content) == "" {
		return nil, errors.NewValidationError("client_id and content are required")
	}
	if input.ResponseType == "" {
		input.ResponseType = models.ResponseTypeEmail
	}
	if !input.ResponseType.Valid() {
		return nil, errors.NewInvalidRequestError("Invalid response type", string(input.ResponseType))
	}
	if _, err := s.clients.Get(ctx, userID, input.ClientID); err != nil {
		return nil, err
	}

	resp := &models.Response{
		ClientID:     input.ClientID,
		Summary:      input.Summary,
		Content:      input.Content,
		Status:       models.ResponseStatusPending,
		Category:     input.Category,
		MissingInfo:  input.MissingInfo,
		ResponseType: input.ResponseType,
		FullQuery:    input.FullQuery,
	}
	if resp.MissingInfo == nil {
		resp.MissingInfo = []string{}
	}
	if err := s.responses.Create(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) List(ctx context.Context, userID, clientID string, limit int) ([]*models.Response, error) {
	if _, err := s.clients.Get(ctx, userID, clientID); err != nil {
		return nil, err
	}
	return s.responses.ListByClient(ctx, clientID, limit)
}

func (s *Service) UpdateStatus(ctx context.Context, userID, id string, status models.ResponseStatus) (*models.Response, error) {
	if !status.Valid() {
		return nil, errors.NewInvalidRequestError("Invalid status", string(status))
	}
	resp, _, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.responses.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	resp.Status = status
	return resp, nil
}

// Send emails an approved response to its client and records the contact.
func (s *Service) Send(ctx context.Context, userID, id string, input *SendInput) (*SendOutput, error) {
	resp, client, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if resp.Status != models.ResponseStatusApproved {
		return nil, errors.NewInvalidStateError("Response must be approved before sending", string(resp.Status))
	}
	if s.mailer == nil {
		return nil, errors.NewExternalServiceError("ses", stderrors.New("email delivery is not configured"))
	}

	subject := defaultSubject
	if input != nil && strings.TrimSpace(input.Subject) != "" {
		subject = strings.TrimSpace(input.Subject)
	}
	msg := models.EmailMessage{
		To:      []string{client.Email},
		Subject: subject,
		Body:    resp.Content,
	}
	if input != nil {
		msg.ReplyTo = input.ReplyTo
	}

	messageID, err := s.mailer.SendEmail(ctx, msg)
	if err != nil {
		return nil, errors.NewNotificationSendFailedError("email", err)
	}

	s.logger.Info("Response sent", map[string]interface{}{
		"responseId": id,
		"clientId":   client.ID,
		"messageId":  messageID,
	})
	if err := s.clients.Touch(ctx, userID, client.ID); err != nil {
		s.logger.Warn("Failed to update last contact", map[string]interface{}{
			"clientId": client.ID,
			"error":    err.Error(),
		})
	}

	return &SendOutput{MessageID: messageID, To: client.Email}, nil
}

// owned loads a response and checks its client belongs to userID.
func (s *Service) owned(ctx context.Context, userID, id string) (*models.Response, *models.Client, error) {
	resp, err := s.responses.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.clients.Get(ctx, userID, resp.ClientID)
	if err != nil {
		if stdErr, ok := errors.As(err); ok && stdErr.Code == errors.ErrCodeResourceNotFound {
			return nil, nil, errors.NewResourceNotFoundError("Response", id)
		}
		return nil, nil, err
	}
	return resp, client, nil
}
