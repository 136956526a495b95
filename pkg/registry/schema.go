// pkg/registry/schema.go
package registry

import "advisor-ai/internal/models"

// PromptRegistry is the versioned catalog of master prompts seeded into the
// prompts table.
type PromptRegistry struct {
	Version     string        `json:"version"`
	LastUpdated string        `json:"lastUpdated"`
	Prompts     []PromptEntry `json:"prompts"`
}

type PromptEntry struct {
	Category     string `json:"category"`
	ResponseType string `json:"responseType"`
	Description  string `json:"description"`
	Prompt       string `json:"prompt"`
}

// Key identifies an entry the same way the prompts table does.
func (e PromptEntry) Key() string {
	return e.Category + "/" + e.ResponseType
}

// Model converts the entry for the prompt repository.
func (e PromptEntry) Model() *models.Prompt {
	return &models.Prompt{
		Category:     e.Category,
		Prompt:       e.Prompt,
		Description:  e.Description,
		ResponseType: models.ResponseType(e.ResponseType),
	}
}

const registrySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "prompts"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "prompts": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["category", "responseType", "prompt"],
        "properties": {
          "category": {"type": "string", "pattern": "^[a-z]+(-[a-z]+)*$"},
          "responseType": {"type": "string", "enum": ["email", "proposal"]},
          "description": {"type": "string"},
          "prompt": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`
