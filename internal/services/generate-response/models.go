// internal/services/generate-response/models.go
package generateresponse

import (
	"advisor-ai/internal/common/llm"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/models"
)

type Input struct {
	Prompt        string              `json:"prompt"`
	ClientContext string              `json:"clientContext"`
	ResponseType  models.ResponseType `json:"responseType"`
}

type Output struct {
	Summary       string   `json:"summary"`
	EmailResponse string   `json:"emailResponse"`
	Category      string   `json:"category"`
	MissingInfo   []string `json:"missingInfo"`
}

// ClientData is the structured form of the free-text client context.
type ClientData struct {
	Name              string   `json:"name,omitempty"`
	RiskProfile       string   `json:"riskProfile,omitempty"`
	PortfolioValue    *float64 `json:"portfolioValue,omitempty"`
	AdditionalContext string   `json:"additionalContext,omitempty"`
}

type ServiceDependencies struct {
	LLM    llm.Completer
	Logger logger.Logger
}
