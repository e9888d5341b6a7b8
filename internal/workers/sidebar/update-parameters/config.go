// internal/workers/sidebar/update-parameters/config.go
package updateparameters

import (
	"time"

	"chime-sidebar/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	CacheEnabled bool
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:      config.GetDuration(wcfg.Timeout),
		CacheEnabled: cfg.Sidebar.ParsCacheEnabled,
	}
}
