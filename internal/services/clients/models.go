// internal/services/clients/models.go
package clients

import (
	"context"

	"advisor-ai/internal/common/database"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/models"
)

// CreateInput is a client added by hand from the dashboard.
type CreateInput struct {
	Name            string   `json:"name"`
	Surname         string   `json:"surname,omitempty"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	Occupation      string   `json:"occupation,omitempty"`
	PortfolioValue  float64  `json:"portfolio_value"`
	RiskProfile     string   `json:"risk_profile"`
	AnnualIncome    *float64 `json:"annual_income,omitempty"`
	InvestmentGoals []string `json:"investment_goals,omitempty"`
	RiskTolerance   *int     `json:"risk_tolerance,omitempty"`
}

// ImportRow is one data row of a client CSV.
type ImportRow struct {
	Line           int
	Name           string
	Surname        string
	Email          string
	PortfolioValue string
	RiskProfile    string
}

type RowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

type ImportResult struct {
	Imported int              `json:"imported"`
	Clients  []*models.Client `json:"clients"`
}

type Repository interface {
	Get(ctx context.Context, userID, id string) (*models.Client, error)
	List(ctx context.Context, userID string) ([]*models.Client, error)
	Create(ctx context.Context, c *models.Client) error
	Update(ctx context.Context, userID, id string, u models.ClientUpdate) (*models.Client, error)
	Delete(ctx context.Context, userID, id string) error
	ExistingEmails(ctx context.Context, userID string, emails []string) ([]string, error)
}

// TxFunc runs fn against a repository bound to one transaction.
type TxFunc func(ctx context.Context, fn func(repo Repository) error) error

type SearchIndex interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
	DeleteDocument(ctx context.Context, index, id string) error
	Search(ctx context.Context, index string, query map[string]interface{}) ([]database.SearchHit, error)
}

type Config struct {
	Index       string
	SearchLimit int
}

type ServiceDependencies struct {
	Repo Repository
	InTx TxFunc
	// Index is optional; without it search filters the advisor's list in memory.
	Index  SearchIndex
	Logger logger.Logger
}
