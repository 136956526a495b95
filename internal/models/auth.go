// internal/models/auth.go
package models

// Advisor is the authenticated user of the API, taken from a verified Supabase access token.
type Advisor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AdvisorProfile is the advisor data the analysis-response template addresses the client with.
type AdvisorProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
}
