// internal/services/categorize-email/config.go
package categorizeemail

import (
	"time"

	"advisor-ai/internal/common/config"
)

type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

func LoadConfig(cfg config.OpenAIConfig) *Config {
	c := &Config{
		Model:       cfg.CategoryModel,
		Temperature: 0.3,
		MaxTokens:   50,
		Timeout:     time.Duration(cfg.Timeout) * time.Millisecond,
	}
	if c.Model == "" {
		c.Model = "gpt-3.5-turbo"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}
