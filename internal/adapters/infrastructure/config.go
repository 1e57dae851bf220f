package infrastructure

import (
	"weatherbot.app/internal/config"
	"weatherbot.app/internal/ports"
)

// ConfigProviderAdapter exposes the cache and scheduler sections to the core
type ConfigProviderAdapter struct {
	config *config.Config
}

func NewConfigProviderAdapter(cfg *config.Config) *ConfigProviderAdapter {
	return &ConfigProviderAdapter{config: cfg}
}

func (c *ConfigProviderAdapter) GetCacheConfig() ports.CacheConfig {
	return ports.CacheConfig{
		Type:          c.config.Cache.Type.String(),
		TTL:           c.config.Cache.TTL(),
		SweepInterval: c.config.Cache.SweepIntervalMinutes,
	}
}

// GetSchedulerConfig converts the second-based settings to durations
func (c *ConfigProviderAdapter) GetSchedulerConfig() ports.SchedulerConfig {
	return ports.SchedulerConfig{
		FetchTimeout:   c.config.Scheduler.FetchTimeout(),
		SendTimeout:    c.config.Scheduler.SendTimeout(),
		MaxConcurrency: c.config.Scheduler.MaxConcurrency,
	}
}
