// internal/services/clients/config.go
package clients

import "advisor-ai/internal/common/config"

func LoadConfig(cfg config.ElasticsearchConfig) *Config {
	c := &Config{
		Index:       cfg.ClientIndex,
		SearchLimit: 50,
	}
	if c.Index == "" {
		c.Index = "advisor-clients"
	}
	return c
}
