// internal/services/generate-summary/models.go
package generatesummary

import (
	"context"
	"encoding/json"
	"time"

	"advisor-ai/internal/common/llm"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/models"
)

type Input struct {
	Client    *Client         `json:"client"`
	Notes     []NoteInput     `json:"notes"`
	Responses []ResponseInput `json:"responses"`
	Tasks     []TaskInput     `json:"tasks"`
	// Persist stores the generated summary in client_summaries.
	Persist bool `json:"persist,omitempty"`
}

// Client is the client profile as the dashboard sends it.
type Client struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Surname            string          `json:"surname,omitempty"`
	Email              string          `json:"email,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	Age                *int            `json:"age,omitempty"`
	Occupation         string          `json:"occupation,omitempty"`
	MaritalStatus      string          `json:"maritalStatus,omitempty"`
	HasChildren        *bool           `json:"hasChildren,omitempty"`
	NumberOfChildren   *int            `json:"numberOfChildren,omitempty"`
	PortfolioValue     *float64        `json:"portfolioValue,omitempty"`
	InvestmentHoldings json.RawMessage `json:"investmentHoldings,omitempty"`
	RiskProfile        string          `json:"riskProfile,omitempty"`
	RiskTolerance      *int            `json:"riskTolerance,omitempty"`
	AnnualIncome       *float64        `json:"annualIncome,omitempty"`
	InvestmentGoals    []string        `json:"investmentGoals,omitempty"`
	RetirementAge      *int            `json:"retirementAge,omitempty"`
	Status             string          `json:"status,omitempty"`
	LastContact        string          `json:"lastContact,omitempty"`
}

type NoteInput struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ResponseInput struct {
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	Context   string    `json:"context,omitempty"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type TaskInput struct {
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Priority  string     `json:"priority"`
	CreatedAt time.Time  `json:"created_at"`
}

type Output struct {
	Summary   string `json:"summary"`
	SummaryID string `json:"summaryId,omitempty"`
}

// summaryData is what the model is shown.
type summaryData struct {
	Profile   profile        `json:"profile"`
	Notes     []noteData     `json:"notes"`
	Responses []responseData `json:"responses"`
	Tasks     []taskData     `json:"tasks"`
}

type profile struct {
	Name               string          `json:"name"`
	Email              string          `json:"email,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	Age                *int            `json:"age,omitempty"`
	Occupation         string          `json:"occupation,omitempty"`
	MaritalStatus      string          `json:"maritalStatus,omitempty"`
	HasChildren        *bool           `json:"hasChildren,omitempty"`
	NumberOfChildren   *int            `json:"numberOfChildren,omitempty"`
	PortfolioValue     *float64        `json:"portfolioValue,omitempty"`
	InvestmentHoldings json.RawMessage `json:"investmentHoldings,omitempty"`
	RiskProfile        string          `json:"riskProfile,omitempty"`
	RiskTolerance      *int            `json:"riskTolerance,omitempty"`
	AnnualIncome       *float64        `json:"annualIncome,omitempty"`
	InvestmentGoals    []string        `json:"investmentGoals,omitempty"`
	RetirementAge      *int            `json:"retirementAge,omitempty"`
	Status             string          `json:"status,omitempty"`
	LastContact        string          `json:"lastContact,omitempty"`
}

type noteData struct {
	Content  string    `json:"content"`
	Date     time.Time `json:"date"`
	Priority string    `json:"priority"`
}

type responseData struct {
	Summary  string    `json:"summary"`
	Content  string    `json:"content"`
	Context  string    `json:"context,omitempty"`
	Category string    `json:"category"`
	Status   string    `json:"status"`
	Date     time.Time `json:"date"`
	Priority string    `json:"priority"`
}

type taskData struct {
	Title    string     `json:"title"`
	Status   string     `json:"status"`
	DueDate  *time.Time `json:"dueDate,omitempty"`
	Priority string     `json:"priority"`
}

// SummaryStore persists generated summaries.
type SummaryStore interface {
	Create(ctx context.Context, s *models.ClientSummary) error
}

type ServiceDependencies struct {
	LLM       llm.Completer
	Summaries SummaryStore
	Logger    logger.Logger
}
