// internal/prompts/generation.go
package prompts

import (
	"encoding/json"
	"fmt"

	"advisor-ai/internal/models"
)

const emailResponsePrompt = `You are a professional financial advisor assistant. Provide clear, compliant financial advice while maintaining a professional tone.

IMPORTANT: Your response MUST follow this EXACT format, with each section starting on a new line:

Summary:
[Write a brief 2-3 sentence summary of the key points]

Email Response:
[Write your detailed email response here]

Category:
[Choose exactly one: investment-update, tax-planning, general-advice, or onboarding]

Missing Information:
[If any information is missing, list it here, one item per line]

Example format:
Summary:
This response addresses the client's questions about tax planning for their investment portfolio.

Email Response:
Dear [Client Name],

Thank you for your inquiry about tax planning...

Category:
tax-planning

Missing Information:
- Current tax bracket
- Specific investment holdings`

const proposalPrompt = `You are a professional financial advisor assistant. Create detailed investment proposals while maintaining a professional tone.

IMPORTANT: Your response MUST follow this EXACT format, with each section starting on a new line:

Summary:
[Write a brief 2-3 sentence executive summary]

Proposal:
[Write your detailed proposal here]

Category:
[Choose exactly one: investment-update, tax-planning, general-advice, or onboarding]

Missing Information:
[If any information is missing, list it here, one item per line]

Example format:
Summary:
This proposal outlines a comprehensive investment strategy for the client's retirement portfolio.

Proposal:
Based on your current financial situation...

Category:
investment-update

Missing Information:
- Current investment portfolio details
- Retirement timeline`

// EmailResponsePrompt is the system prompt for client email replies.
func EmailResponsePrompt() string { return emailResponsePrompt }

// ProposalPrompt is the system prompt for investment proposals.
func ProposalPrompt() string { return proposalPrompt }

// SystemPromptFor picks the output-format prompt; anything but a proposal gets the email prompt.
func SystemPromptFor(responseType models.ResponseType) string {
	if responseType == models.ResponseTypeProposal {
		return proposalPrompt
	}
	return emailResponsePrompt
}

// GenerationUserPrompt builds the user message sent alongside SystemPromptFor.
func GenerationUserPrompt(clientData interface{}, masterPrompt, additionalContext string, responseType models.ResponseType) (string, error) {
	data, err := json.MarshalIndent(clientData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal client data: %w", err)
	}

	deliverable := "professional email response"
	if responseType == models.ResponseTypeProposal {
		deliverable = "detailed investment proposal"
	}

	return fmt.Sprintf(`
Client Data:
%s

Master Prompt:
%s

Additional Context:
%s

Please provide a %s based on the above information.`, data, masterPrompt, additionalContext, deliverable), nil
}
