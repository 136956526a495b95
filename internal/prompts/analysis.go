// internal/prompts/analysis.go
package prompts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aymerick/raymond"

	"advisor-ai/internal/models"
)

const emailAnalysisPrompt = `You are an expert financial advisor assistant. Analyze the following email content and provide a structured analysis. Focus on extracting key details relevant to financial advisory services.

Your response should be a JSON object with the following structure:
{
  "email_summary": "Brief summary of the email",
  "sender_details": {
    "name": "Sender's name if available, null if not",
    "email": "Sender's email if available, null if not (do not create example or placeholder emails)",
    "relationship": "One of: Client, Prospect, Institution, Internal, Other"
  },
  "email_intent": {
    "category": "One of: Inquiry, Investment Consultation, Tax Planning, Portfolio Review, Offshore Investments, Proposal, Compliance, Administrative Request, Other",
    "urgency": "One of: Low, Medium, High",
    "action_required": true/false
  },
  "key_topics": ["List of financial topics discussed"],
  "specific_questions": ["List of any direct questions asked including values if mentioned"],
  "attached_documents": {
    "present": true/false,
    "types": ["Types of documents if any"]
  },
  "calculations_required": ["List of any calculations required"],
  "recommended_response": {
    "summary": "Brief outline of an appropriate response",
    "requires_manual_review": true/false,
    "escalation_needed": true/false,
    "assigned_department": "One of: Advisory, Compliance, Client Services, Other"
  },
  "values_mentioned": ["List of any values mentioned, formatted with thousand separators and currency symbols"]
}

Ensure all values are properly formatted and match the specified types.`

// EmailAnalysisPrompt is the system prompt for structured email analysis.
func EmailAnalysisPrompt() string { return emailAnalysisPrompt }

// AnalysisResponseTemplate is a Handlebars template. Fields are triple-stashed
// because the output is an LLM prompt, not HTML.
const AnalysisResponseTemplate = `
Context:
I'm a financial advisor {{{advisor.first_name}}} {{{advisor.last_name}}} from a wealth management company called {{{advisor.company}}}. A client has sent me an email which I have already analysed:

Analysis Data:
{{{emailAnalysis.email_summary}}}
Intent: {{{emailAnalysis.email_intent}}}
Key Topics: {{{emailAnalysis.key_topics}}}
Specific Questions: {{{emailAnalysis.specific_questions}}}
Raw Email: {{{emailAnalysis.raw_email}}}

Client Data:
Basic Information:
- Name: {{{client.name}}} {{{client.surname}}}
- Email: {{{client.email}}}
- Status: {{{client.status}}}
- Portfolio Value: {{{client.portfolioValue}}}
- Risk Profile: {{{client.riskProfile}}}
- Last Contact: {{{client.lastContact}}}

Documents:
{{#each clientDocuments}}
- {{{this.title}}} ({{{this.type}}}) - {{{this.description}}}
{{/each}}

Notes:
{{#each clientNotes}}
- {{{this.content}}} (Date: {{{this.created_at}}})
{{/each}}

Tasks:
{{#each clientTasks}}
- {{{this.title}}} - Status: {{{this.status}}}
{{/each}}

Instructions:
- Craft a response to their email and give financial advice.
- Do not recommend them to see other professionals for advice.
- Provide calculations to support your reasoning where necessary.
- Give specific recommendations and avoid scheduling a meeting to discuss.
- Ask questions if necessary.
- Don't be overtly friendly.
- Tell them whether something is a good idea or not.
- Do not make up information, only use the data provided.
`

var analysisResponseTpl = raymond.MustParse(AnalysisResponseTemplate)

// AnalysisResponseData is everything the analysis-response prompt is populated from.
// Notes and tasks are expected newest first.
type AnalysisResponseData struct {
	Advisor   models.AdvisorProfile
	Analysis  models.EmailAnalysisRecord
	Client    models.Client
	Documents []models.Document
	Notes     []models.Note
	Tasks     []models.Task
}

// RenderAnalysisResponse populates AnalysisResponseTemplate.
func RenderAnalysisResponse(data AnalysisResponseData) (string, error) {
	out, err := analysisResponseTpl.Exec(analysisContext(data))
	if err != nil {
		return "", fmt.Errorf("render analysis response: %w", err)
	}
	return out, nil
}

func analysisContext(data AnalysisResponseData) map[string]interface{} {
	documents := make([]map[string]interface{}, 0, len(data.Documents))
	for _, doc := range data.Documents {
		documents = append(documents, map[string]interface{}{
			"title":       doc.Name,
			"type":        doc.FileType,
			"description": fmt.Sprintf("File size: %d bytes", doc.FileSize),
		})
	}

	notes := make([]map[string]interface{}, 0, len(data.Notes))
	for _, note := range data.Notes {
		notes = append(notes, map[string]interface{}{
			"content":    note.Content,
			"created_at": note.CreatedAt.Format("1/2/2006"),
		})
	}

	tasks := make([]map[string]interface{}, 0, len(data.Tasks))
	for _, task := range data.Tasks {
		tasks = append(tasks, map[string]interface{}{
			"title":  task.Title,
			"status": string(task.Status),
		})
	}

	lastContact := ""
	if !data.Client.LastContact.IsZero() {
		lastContact = data.Client.LastContact.UTC().Format(time.RFC3339)
	}

	return map[string]interface{}{
		"advisor": map[string]interface{}{
			"first_name": data.Advisor.FirstName,
			"last_name":  data.Advisor.LastName,
			"company":    data.Advisor.Company,
		},
		"emailAnalysis": map[string]interface{}{
			"email_summary":      data.Analysis.EmailSummary,
			"email_intent":       data.Analysis.EmailIntent.Category,
			"key_topics":         strings.Join(data.Analysis.KeyTopics, ", "),
			"specific_questions": strings.Join(data.Analysis.SpecificQuestions, ", "),
			"raw_email":          data.Analysis.RawEmail,
		},
		"client": map[string]interface{}{
			"name":           data.Client.Name,
			"surname":        data.Client.Surname,
			"email":          data.Client.Email,
			"status":         string(data.Client.Status),
			"portfolioValue": strconv.FormatFloat(data.Client.PortfolioValue, 'f', -1, 64),
			"riskProfile":    string(data.Client.RiskProfile),
			"lastContact":    lastContact,
		},
		"clientDocuments": documents,
		"clientNotes":     notes,
		"clientTasks":     tasks,
	}
}
