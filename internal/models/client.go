// internal/models/client.go
package models

import (
	"strings"
	"time"
)

type ClientStatus string

const (
	ClientStatusPending  ClientStatus = "pending"
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

type RiskProfile string

const (
	RiskConservative RiskProfile = "conservative"
	RiskModerate     RiskProfile = "moderate"
	RiskAggressive   RiskProfile = "aggressive"
)

// ParseRiskProfile accepts any casing of the three risk profiles.
func ParseRiskProfile(s string) (RiskProfile, bool) {
	switch RiskProfile(strings.ToLower(strings.TrimSpace(s))) {
	case RiskConservative:
		return RiskConservative, true
	case RiskModerate:
		return RiskModerate, true
	case RiskAggressive:
		return RiskAggressive, true
	}
	return "", false
}

func (s ClientStatus) Valid() bool {
	switch s {
	case ClientStatusPending, ClientStatusActive, ClientStatusInactive:
		return true
	}
	return false
}

// Client is an advisor's customer.
type Client struct {
	ID              string       `json:"id" db:"id"`
	UserID          string       `json:"user_id" db:"user_id"`
	Name            string       `json:"name" db:"name"`
	Surname         string       `json:"surname,omitempty" db:"surname"`
	Email           string       `json:"email" db:"email"`
	Phone           string       `json:"phone,omitempty" db:"phone"`
	Occupation      string       `json:"occupation,omitempty" db:"occupation"`
	Status          ClientStatus `json:"status" db:"status"`
	PortfolioValue  float64      `json:"portfolio_value" db:"portfolio_value"`
	RiskProfile     RiskProfile  `json:"risk_profile" db:"risk_profile"`
	LastContact     time.Time    `json:"last_contact" db:"last_contact"`
	AnnualIncome    *float64     `json:"annual_income,omitempty" db:"annual_income"`
	InvestmentGoals []string     `json:"investment_goals,omitempty" db:"investment_goals"`
	RiskTolerance   *int         `json:"risk_tolerance,omitempty" db:"risk_tolerance"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

// FullName joins name and surname the way correspondence addresses the client.
func (c *Client) FullName() string {
	if c.Surname == "" {
		return c.Name
	}
	return c.Name + " " + c.Surname
}

// ClientUpdate carries the editable client fields; nil fields are left untouched.
type ClientUpdate struct {
	Name            *string       `json:"name,omitempty"`
	Surname         *string       `json:"surname,omitempty"`
	Email           *string       `json:"email,omitempty"`
	Phone           *string       `json:"phone,omitempty"`
	Occupation      *string       `json:"occupation,omitempty"`
	Status          *ClientStatus `json:"status,omitempty"`
	PortfolioValue  *float64      `json:"portfolio_value,omitempty"`
	RiskProfile     *RiskProfile  `json:"risk_profile,omitempty"`
	AnnualIncome    *float64      `json:"annual_income,omitempty"`
	InvestmentGoals []string      `json:"investment_goals,omitempty"`
	RiskTolerance   *int          `json:"risk_tolerance,omitempty"`
}
