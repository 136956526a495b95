// internal/services/categorize-email/models.go
package categorizeemail

import (
	"advisor-ai/internal/common/llm"
	"advisor-ai/internal/common/logger"
)

type Input struct {
	EmailContent string   `json:"emailContent"`
	Categories   []string `json:"categories"`
}

type Output struct {
	Category string `json:"category"`
}

type ServiceDependencies struct {
	LLM    llm.Completer
	Logger logger.Logger
}
