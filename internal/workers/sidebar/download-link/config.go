// internal/workers/sidebar/download-link/config.go
package downloadlink

import (
	"time"

	"chime-sidebar/internal/common/config"
	"chime-sidebar/internal/sidebar"
)

type Config struct {
	Timeout  time.Duration
	BasePath string
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	basePath := cfg.Sidebar.DownloadBasePath
	if basePath == "" {
		basePath = sidebar.DefaultDownloadPath
	}
	return &Config{
		Timeout:  config.GetDuration(wcfg.Timeout),
		BasePath: basePath,
	}
}
