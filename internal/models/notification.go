// internal/models/notification.go
package models

// EmailMessage represents an email to be sent
type EmailMessage struct {
	To       []string `json:"to"`
	Cc       []string `json:"cc,omitempty"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	HTMLBody string   `json:"htmlBody,omitempty"`
	From     string   `json:"from"`
	ReplyTo  string   `json:"replyTo,omitempty"`
}

// Escalation is published when an analysed email needs the advisor's urgent attention.
type Escalation struct {
	AnalysisID         string `json:"analysisId"`
	ClientID           string `json:"clientId"`
	AdvisorID          string `json:"advisorId"`
	SenderEmail        string `json:"senderEmail,omitempty"`
	Summary            string `json:"summary"`
	Urgency            string `json:"urgency"`
	AssignedDepartment string `json:"assignedDepartment"`
}
