// Package clients manages an advisor's client book: CRUD, CSV import and search.
package clients

import (
	"context"
	"strings"
	"time"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/models"
)

type Service struct {
	config *Config
	repo   Repository
	inTx   TxFunc
	index  SearchIndex
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	inTx := deps.InTx
	if inTx == nil {
		repo := deps.Repo
		inTx = func(ctx context.Context, fn func(Repository) error) error { return fn(repo) }
	}
	return &Service{
		config: config,
		repo:   deps.Repo,
		inTx:   inTx,
		index:  deps.Index,
		logger: deps.Logger,
	}
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.Client, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string) ([]*models.Client, error) {
	return s.repo.List(ctx, userID)
}

// Create adds a single active client, rejecting an email the advisor already has.
func (s *Service) Create(ctx context.Context, userID string, input *CreateInput) (*models.Client, error) {
	risk, err := validateCreate(input)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(input.Email)

	existing, err := s.repo.ExistingEmails(ctx, userID, []string{email})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, errors.NewDuplicateClientError(existing)
	}

	client := &models.Client{
		UserID:          userID,
		Name:            strings.TrimSpace(input.Name),
		Surname:         strings.TrimSpace(input.Surname),
		Email:           email,
		Phone:           input.Phone,
		Occupation:      input.Occupation,
		Status:          models.ClientStatusActive,
		PortfolioValue:  input.PortfolioValue,
		RiskProfile:     risk,
		AnnualIncome:    input.AnnualIncome,
		InvestmentGoals: input.InvestmentGoals,
		RiskTolerance:   input.RiskTolerance,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.indexClients(ctx, client)
	return client, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, update models.ClientUpdate) (*models.Client, error) {
	if err := validateUpdate(&update); err != nil {
		return nil, err
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		update.Email = &email
		current, err := s.repo.Get(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(current.Email, email) {
			existing, err := s.repo.ExistingEmails(ctx, userID, []string{email})
			if err != nil {
				return nil, err
			}
			if len(existing) > 0 {
				return nil, errors.NewDuplicateClientError(existing)
			}
		}
	}

	client, err := s.repo.Update(ctx, userID, id, update)
	if err != nil {
		return nil, err
	}
	s.indexClients(ctx, client)
	return client, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.DeleteDocument(ctx, s.config.Index, id); err != nil {
			s.logger.Warn("Failed to remove client from search index", map[string]interface{}{
				"clientId": id,
				"error":    err.Error(),
			})
		}
	}
	return nil
}

// indexClients mirrors clients into the search index. Failures only log:
// Postgres stays the source of truth and List covers search without the index.
func (s *Service) indexClients(ctx context.Context, clients ...*models.Client) {
	if s.index == nil {
		return
	}
	for _, c := range clients {
		if err := s.index.IndexDocument(ctx, s.config.Index, c.ID, newSearchDocument(c)); err != nil {
			s.logger.Warn("Failed to index client", map[string]interface{}{
				"clientId": c.ID,
				"error":    err.Error(),
			})
		}
	}
}

// searchDocument is the indexed shape of a client.
type searchDocument struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	Name           string              `json:"name"`
	Surname        string              `json:"surname,omitempty"`
	Email          string              `json:"email"`
	Occupation     string              `json:"occupation,omitempty"`
	Status         models.ClientStatus `json:"status"`
	RiskProfile    models.RiskProfile  `json:"risk_profile"`
	PortfolioValue float64             `json:"portfolio_value"`
	LastContact    time.Time           `json:"last_contact"`
}

func newSearchDocument(c *models.Client) searchDocument {
	return searchDocument{
		ID:             c.ID,
		UserID:         c.UserID,
		Name:           c.Name,
		Surname:        c.Surname,
		Email:          c.Email,
		Occupation:     c.Occupation,
		Status:         c.Status,
		RiskProfile:    c.RiskProfile,
		PortfolioValue: c.PortfolioValue,
		LastContact:    c.LastContact,
	}
}
