// internal/services/clients/import.go
package clients

import (
	"context"
	"io"
	"strconv"
	"strings"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"
)

// Import validates every CSV row, rejects emails the advisor already has and
// inserts the batch in one transaction. Nothing is written when any row fails.
func (s *Service) Import(ctx context.Context, userID string, r io.Reader) (*ImportResult, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}

	if rowErrors := validateRows(rows); len(rowErrors) > 0 {
		s.logger.Info("CSV import rejected", map[string]interface{}{
			"userId":      userID,
			"invalidRows": len(rowErrors),
		})
		return nil, rowValidationError(rowErrors)
	}

	emails := make([]string, len(rows))
	for i, row := range rows {
		emails[i] = row.Email
	}
	existing, err := s.repo.ExistingEmails(ctx, userID, emails)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, errors.NewDuplicateClientError(existing)
	}

	clients := make([]*models.Client, len(rows))
	for i, row := range rows {
		clients[i] = rowToClient(userID, row)
	}

	err = s.inTx(ctx, func(repo Repository) error {
		for _, c := range clients {
			if err := repo.Create(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clients imported", map[string]interface{}{
		"userId": userID,
		"count":  len(clients),
	})
	s.indexClients(ctx, clients...)

	return &ImportResult{Imported: len(clients), Clients: clients}, nil
}

// rowToClient assumes the row already passed validateRow.
func rowToClient(userID string, row ImportRow) *models.Client {
	value, _ := strconv.ParseFloat(row.PortfolioValue, 64)
	risk, _ := models.ParseRiskProfile(row.RiskProfile)
	return &models.Client{
		UserID:         userID,
		Name:           row.Name,
		Surname:        row.Surname,
		Email:          strings.TrimSpace(row.Email),
		Status:         models.ClientStatusActive,
		PortfolioValue: value,
		RiskProfile:    risk,
	}
}
