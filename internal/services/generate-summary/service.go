// Package generatesummary writes a markdown overview of a client from the
// profile and the most recent notes, responses and tasks.
package generatesummary

import (
	"context"
	"sort"
	"strings"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/llm"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/models"
	"advisor-ai/internal/prompts"
)

const Operation = "generate-summary"

type Service struct {
	config    *Config
	llm       llm.Completer
	summaries SummaryStore
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		llm:       deps.LLM,
		summaries: deps.Summaries,
		logger:    deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Client == nil || input.Client.ID == "" {
		return nil, errors.NewInvalidRequestError("Invalid client data", "client.id is required")
	}

	data := buildSummaryData(input)
	userPrompt, err := prompts.ClientSummaryUserPrompt(data)
	if err != nil {
		return nil, errors.NewTemplateRenderFailedError(err)
	}

	s.logger.Info("Generating client summary", map[string]interface{}{
		"clientId":  input.Client.ID,
		"notes":     len(data.Notes),
		"responses": len(data.Responses),
		"tasks":     len(data.Tasks),
	})

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	summary, err := s.llm.Complete(ctx, llm.Request{
		Operation:   Operation,
		Model:       s.config.Model,
		System:      prompts.ClientSummaryPrompt(),
		User:        userPrompt,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	out := &Output{Summary: summary}
	if input.Persist && s.summaries != nil {
		record := &models.ClientSummary{ClientID: input.Client.ID, Summary: summary}
		if err := s.summaries.Create(ctx, record); err != nil {
			return nil, err
		}
		out.SummaryID = record.ID
	}
	return out, nil
}

// buildSummaryData sorts each list newest first and keeps the newest entries.
func buildSummaryData(input *Input) summaryData {
	notes := append([]NoteInput(nil), input.Notes...)
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	responses := append([]ResponseInput(nil), input.Responses...)
	sort.SliceStable(responses, func(i, j int) bool { return responses[i].CreatedAt.After(responses[j].CreatedAt) })
	tasks := append([]TaskInput(nil), input.Tasks...)
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })

	data := summaryData{
		Profile:   newProfile(input.Client),
		Notes:     []noteData{},
		Responses: []responseData{},
		Tasks:     []taskData{},
	}

	for i, n := range notes {
		if i == maxNotes {
			break
		}
		data.Notes = append(data.Notes, noteData{Content: n.Content, Date: n.CreatedAt, Priority: "high"})
	}
	for i, r := range responses {
		if i == maxResponses {
			break
		}
		data.Responses = append(data.Responses, responseData{
			Summary:  r.Summary,
			Content:  r.Content,
			Context:  r.Context,
			Category: r.Category,
			Status:   r.Status,
			Date:     r.CreatedAt,
			Priority: "high",
		})
	}
	for i, t := range tasks {
		if i == maxTasks {
			break
		}
		data.Tasks = append(data.Tasks, taskData{Title: t.Title, Status: t.Status, DueDate: t.DueDate, Priority: t.Priority})
	}
	return data
}

func newProfile(c *Client) profile {
	return profile{
		Name:               strings.TrimSpace(c.Name + " " + c.Surname),
		Email:              c.Email,
		Phone:              c.Phone,
		Age:                c.Age,
		Occupation:         c.Occupation,
		MaritalStatus:      c.MaritalStatus,
		HasChildren:        c.HasChildren,
		NumberOfChildren:   c.NumberOfChildren,
		PortfolioValue:     c.PortfolioValue,
		InvestmentHoldings: c.InvestmentHoldings,
		RiskProfile:        c.RiskProfile,
		RiskTolerance:      c.RiskTolerance,
		AnnualIncome:       c.AnnualIncome,
		InvestmentGoals:    c.InvestmentGoals,
		RetirementAge:      c.RetirementAge,
		Status:             c.Status,
		LastContact:        c.LastContact,
	}
}
