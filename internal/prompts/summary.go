// internal/prompts/summary.go
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
)

const clientSummaryPrompt = `You are a professional financial advisor assistant creating a comprehensive client summary. Follow these guidelines:

1. Information Weighting:
   - Notes and recent communications (context) carry the highest weight
   - Dynamic information (recent portfolio changes, life events) is more relevant than static data
   - Historical context should inform but not dominate the summary

2. Use the following Markdown formatting:
   - Use # for main sections (e.g., # Financial Overview)
   - Use ## for subsections (e.g., ## Investment Strategy)
   - Use ** for important highlights (e.g., **High Risk Tolerance**)
   - Use - for bullet points in lists
   - Use > for important quotes or notes

3. Structure the summary with these sections:
   # Client Overview
   (Key personal and financial information)

   ## Current Financial Situation
   (Portfolio value, investment holdings, risk profile)

   ## Family & Lifestyle
   (Age, marital status, children, lifestyle factors affecting financial planning)

   ## Recent Developments
   (Latest notes, communications, and significant changes)

   ## Action Items & Recommendations
   (Based on recent communications and notes)

4. Highlight any red flags or immediate action items that require attention.`

// ClientSummaryPrompt is the system prompt for markdown client summaries.
func ClientSummaryPrompt() string { return clientSummaryPrompt }

// ClientSummaryUserPrompt embeds the summary input as indented JSON.
func ClientSummaryUserPrompt(data interface{}) (string, error) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary data: %w", err)
	}
	return "Generate a comprehensive client summary using markdown formatting. " +
		"Focus on recent notes and communications while incorporating relevant static information. " +
		"Use the following data:\n" + string(body), nil
}

// CategoryPrompt asks for exactly one of categories. Hyphens are shown as spaces.
func CategoryPrompt(categories []string) string {
	var b strings.Builder
	b.WriteString("You are an expert financial advisor assistant. Analyze the following email content and categorize it into one of the provided categories. ")
	b.WriteString("Choose the most appropriate category based on the main topic and intent of the email.\n\nAvailable categories:\n")
	for i, cat := range categories {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(strings.ReplaceAll(cat, "-", " "))
	}
	b.WriteString("\n\nRespond with ONLY the category name, nothing else.")
	return b.String()
}
