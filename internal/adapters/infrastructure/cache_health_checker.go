package infrastructure

import (
	"context"

	"weatherbot.app/internal/ports"
)

type cachePinger interface {
	Ping(ctx context.Context) error
}

type cacheSizer interface {
	Len() int
}

// CacheHealthChecker pings remote cache backends and reports the size of local ones.
type CacheHealthChecker struct {
	store     ports.CacheProvider
	cacheType string
}

func NewCacheHealthChecker(store ports.CacheProvider, cacheType string) *CacheHealthChecker {
	return &CacheHealthChecker{store: store, cacheType: cacheType}
}

// Check never reports unhealthy: every read falls through to the provider when the cache is down.
func (c *CacheHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "cache",
		Status:    "healthy",
		Details:   map[string]interface{}{"type": c.cacheType},
	}

	if c.store == nil {
		status.Status = "degraded"
		status.Error = "cache backend is not configured"
		return status
	}

	if pinger, ok := c.store.(cachePinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			status.Status = "degraded"
			status.Error = err.Error()
			return status
		}
	}
	if sizer, ok := c.store.(cacheSizer); ok {
		status.Details["entries"] = sizer.Len()
	}
	return status
}
