package infrastructure

import (
	"context"

	"weatherbot.app/internal/ports"
)

// SystemHealthChecker runs every component check and appends a summary of the
// effective cache and scheduler settings under "config".
type SystemHealthChecker struct {
	checkers       map[string]ports.HealthChecker
	configProvider ports.ConfigProvider
}

type SystemHealthCheckerConfig struct {
	DatabaseChecker   ports.HealthChecker
	WeatherAPIChecker ports.HealthChecker
	TelegramChecker   ports.HealthChecker
	CacheChecker      ports.HealthChecker
	ConfigProvider    ports.ConfigProvider
}

func NewSystemHealthChecker(config SystemHealthCheckerConfig) *SystemHealthChecker {
	checkers := make(map[string]ports.HealthChecker)
	if config.DatabaseChecker != nil {
		checkers["database"] = config.DatabaseChecker
	}
	if config.WeatherAPIChecker != nil {
		checkers["weatherAPI"] = config.WeatherAPIChecker
	}
	if config.TelegramChecker != nil {
		checkers["telegram"] = config.TelegramChecker
	}
	if config.CacheChecker != nil {
		checkers["cache"] = config.CacheChecker
	}

	return &SystemHealthChecker{
		checkers:       checkers,
		configProvider: config.ConfigProvider,
	}
}

func (s *SystemHealthChecker) CheckAll(ctx context.Context) map[string]ports.HealthStatus {
	results := make(map[string]ports.HealthStatus, len(s.checkers)+1)

	for name, checker := range s.checkers {
		results[name] = checker.Check(ctx)
	}

	if s.configProvider != nil {
		cache := s.configProvider.GetCacheConfig()
		scheduler := s.configProvider.GetSchedulerConfig()
		results["config"] = ports.HealthStatus{
			Component: "config",
			Status:    "healthy",
			Details: map[string]interface{}{
				"cacheType":      cache.Type,
				"cacheTTL":       cache.TTL.String(),
				"sweepEvery":     cache.SweepInterval,
				"fetchTimeout":   scheduler.FetchTimeout.String(),
				"sendTimeout":    scheduler.SendTimeout.String(),
				"maxConcurrency": scheduler.MaxConcurrency,
			},
		}
	}

	return results
}
