// internal/models/analysis.go
package models

import "time"

type SenderDetails struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Relationship string  `json:"relationship"`
}

type EmailIntent struct {
	Category       string `json:"category"`
	Urgency        string `json:"urgency"`
	ActionRequired bool   `json:"action_required"`
}

type AttachedDocuments struct {
	Present bool     `json:"present"`
	Types   []string `json:"types"`
}

type RecommendedResponse struct {
	Summary              string `json:"summary"`
	RequiresManualReview bool   `json:"requires_manual_review"`
	EscalationNeeded     bool   `json:"escalation_needed"`
	AssignedDepartment   string `json:"assigned_department"`
}

// EmailAnalysis is the structured reading of an inbound email produced by the LLM.
type EmailAnalysis struct {
	EmailSummary         string              `json:"email_summary"`
	SenderDetails        SenderDetails       `json:"sender_details"`
	EmailIntent          EmailIntent         `json:"email_intent"`
	KeyTopics            []string            `json:"key_topics"`
	SpecificQuestions    []string            `json:"specific_questions"`
	AttachedDocuments    AttachedDocuments   `json:"attached_documents"`
	CalculationsRequired []string            `json:"calculations_required,omitempty"`
	RecommendedResponse  RecommendedResponse `json:"recommended_response"`
	ValuesMentioned      []string            `json:"values_mentioned,omitempty"`
}

// NeedsEscalation reports whether the advisor should be alerted out of band.
func (a *EmailAnalysis) NeedsEscalation() bool {
	return a.RecommendedResponse.EscalationNeeded || a.EmailIntent.Urgency == "High"
}

// EmailAnalysisRecord is an EmailAnalysis persisted in email_analyses.
type EmailAnalysisRecord struct {
	ID       string `json:"id" db:"id"`
	ClientID string `json:"client_id" db:"client_id"`
	EmailAnalysis
	RawEmail  string    `json:"raw_email" db:"raw_email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
