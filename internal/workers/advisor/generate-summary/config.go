// internal/workers/advisor/generate-summary/config.go
package generatesummary

import (
	"time"

	"advisor-ai/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func createConfigFromAppConfig(appConfig *config.Config) *Config {
	cfg := &Config{Timeout: 90 * time.Second}
	if appConfig == nil {
		return cfg
	}
	if wcfg := config.GetWorkerConfig(appConfig, TaskType); wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
