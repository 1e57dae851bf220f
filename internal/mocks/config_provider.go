package mocks

import (
	"time"

	"weatherbot.app/internal/ports"
)

// StaticConfig returns fixed cache and scheduler settings.
type StaticConfig struct {
	Cache     ports.CacheConfig
	Scheduler ports.SchedulerConfig
}

var _ ports.ConfigProvider = StaticConfig{}

// DefaultConfig mirrors the production defaults with short timeouts.
func DefaultConfig() StaticConfig {
	return StaticConfig{
		Cache: ports.CacheConfig{Type: "memory", TTL: 300 * time.Second, SweepInterval: 15},
		Scheduler: ports.SchedulerConfig{
			FetchTimeout:   2 * time.Second,
			SendTimeout:    2 * time.Second,
			MaxConcurrency: 8,
		},
	}
}

func (c StaticConfig) GetCacheConfig() ports.CacheConfig         { return c.Cache }
func (c StaticConfig) GetSchedulerConfig() ports.SchedulerConfig { return c.Scheduler }
