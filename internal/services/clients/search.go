// internal/services/clients/search.go
package clients

import (
	"context"
	"encoding/json"
	"strings"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"
)

type SearchFilter struct {
	Query       string
	Status      models.ClientStatus
	RiskProfile models.RiskProfile
}

// IndexMapping is the client index mapping; user_id must stay a keyword for the tenant filter.
var IndexMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":              map[string]interface{}{"type": "keyword"},
			"user_id":         map[string]interface{}{"type": "keyword"},
			"name":            map[string]interface{}{"type": "text"},
			"surname":         map[string]interface{}{"type": "text"},
			"email":           map[string]interface{}{"type": "text", "fields": map[string]interface{}{"raw": map[string]interface{}{"type": "keyword"}}},
			"occupation":      map[string]interface{}{"type": "text"},
			"status":          map[string]interface{}{"type": "keyword"},
			"risk_profile":    map[string]interface{}{"type": "keyword"},
			"portfolio_value": map[string]interface{}{"type": "double"},
			"last_contact":    map[string]interface{}{"type": "date"},
		},
	},
}

// Search returns the advisor's clients matching filter.
func (s *Service) Search(ctx context.Context, userID string, filter SearchFilter) ([]*models.Client, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.NewInvalidRequestError("Invalid status filter", string(filter.Status))
	}
	if filter.RiskProfile != "" {
		risk, ok := models.ParseRiskProfile(string(filter.RiskProfile))
		if !ok {
			return nil, errors.NewInvalidRequestError("Invalid risk profile filter", string(filter.RiskProfile))
		}
		filter.RiskProfile = risk
	}
	filter.Query = strings.TrimSpace(filter.Query)

	if s.index != nil && filter.Query != "" {
		return s.searchIndex(ctx, userID, filter)
	}
	return s.searchList(ctx, userID, filter)
}

func (s *Service) searchIndex(ctx context.Context, userID string, filter SearchFilter) ([]*models.Client, error) {
	hits, err := s.index.Search(ctx, s.config.Index, buildQuery(userID, filter, s.config.SearchLimit))
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(s.config.Index, err)
	}

	clients := make([]*models.Client, 0, len(hits))
	for _, hit := range hits {
		var doc searchDocument
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, errors.NewSearchQueryFailedError(s.config.Index, err)
		}
		clients = append(clients, &models.Client{
			ID:             doc.ID,
			UserID:         doc.UserID,
			Name:           doc.Name,
			Surname:        doc.Surname,
			Email:          doc.Email,
			Occupation:     doc.Occupation,
			Status:         doc.Status,
			RiskProfile:    doc.RiskProfile,
			PortfolioValue: doc.PortfolioValue,
			LastContact:    doc.LastContact,
		})
	}
	return clients, nil
}

func buildQuery(userID string, filter SearchFilter, limit int) map[string]interface{} {
	filters := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"user_id": userID}},
	}
	if filter.Status != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"status": filter.Status}})
	}
	if filter.RiskProfile != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"risk_profile": filter.RiskProfile}})
	}

	return map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     filter.Query,
						"fields":    []string{"name^2", "surname^2", "email", "occupation"},
						"fuzziness": "AUTO",
					},
				},
				"filter": filters,
			},
		},
	}
}

// searchList filters the full list the way the dashboard does: substring on name or email.
func (s *Service) searchList(ctx context.Context, userID string, filter SearchFilter) ([]*models.Client, error) {
	all, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(filter.Query)

	matched := make([]*models.Client, 0, len(all))
	for _, c := range all {
		if q != "" && !strings.Contains(strings.ToLower(c.FullName()), q) && !strings.Contains(strings.ToLower(c.Email), q) {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.RiskProfile != "" && c.RiskProfile != filter.RiskProfile {
			continue
		}
		matched = append(matched, c)
	}
	return matched, nil
}
