// internal/models/prompt.go
package models

import "time"

type ResponseType string

const (
	ResponseTypeEmail    ResponseType = "email"
	ResponseTypeProposal ResponseType = "proposal"
)

func (t ResponseType) Valid() bool {
	return t == ResponseTypeEmail || t == ResponseTypeProposal
}

// Prompt is a reusable master prompt the advisor picks when generating a response.
type Prompt struct {
	ID           string       `json:"id" db:"id"`
	Category     string       `json:"category" db:"category"`
	Prompt       string       `json:"prompt" db:"prompt"`
	Description  string       `json:"description" db:"description"`
	ResponseType ResponseType `json:"response_type" db:"response_type"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
