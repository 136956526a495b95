// internal/services/analyze-email/config.go
package analyzeemail

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
		Model:       cfg.AnalysisModel,
		Temperature: 0.3,
		MaxTokens:   2000,
		Timeout:     time.Duration(cfg.Timeout) * time.Millisecond,
	}
	if c.Model == "" {
		c.Model = "gpt-4-turbo-preview"
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}
