// internal/models/response.go
package models

import (
	"encoding/json"
	"time"
)

type ResponseStatus string

const (
	ResponseStatusPending  ResponseStatus = "pending"
	ResponseStatusApproved ResponseStatus = "approved"
	ResponseStatusRejected ResponseStatus = "rejected"
)

func (s ResponseStatus) Valid() bool {
	switch s {
	case ResponseStatusPending, ResponseStatusApproved, ResponseStatusRejected:
		return true
	}
	return false
}

// Response is a generated email or proposal saved against a client.
type Response struct {
	ID           string          `json:"id" db:"id"`
	ClientID     string          `json:"client_id" db:"client_id"`
	Summary      string          `json:"summary" db:"summary"`
	Content      string          `json:"content" db:"content"`
	Status       ResponseStatus  `json:"status" db:"status"`
	Category     string          `json:"category" db:"category"`
	MissingInfo  []string        `json:"missing_info" db:"missing_info"`
	ResponseType ResponseType    `json:"response_type" db:"response_type"`
	FullQuery    json.RawMessage `json:"full_query,omitempty" db:"full_query"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
