package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// Cache is the read-through cache in front of the weather provider.
// Successful fetches are stored for the configured TTL; failures are never stored.
// Concurrent misses on one key share a single upstream call. That call runs
// detached from the callers, bounded by the fetch timeout, so a cancelled
// caller only abandons its own wait.
type Cache struct {
	provider     ports.WeatherProvider
	store        ports.CacheProvider
	ttl          time.Duration
	fetchTimeout time.Duration
	logger   ports.Logger
	metrics  ports.CacheMetrics
	flights  singleflight.Group
}

type CacheDependencies struct {
	WeatherProvider ports.WeatherProvider
	Store           ports.CacheProvider
	Config          ports.ConfigProvider
	Logger          ports.Logger
	Metrics         ports.CacheMetrics
}

func NewCache(deps CacheDependencies) (*Cache, error) {
	if deps.WeatherProvider == nil {
		return nil, errors.NewValidationError("weather provider is required")
	}
	if deps.Store == nil {
		return nil, errors.NewValidationError("cache store is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Metrics == nil {
		return nil, errors.NewValidationError("metrics is required")
	}

	ttl := deps.Config.GetCacheConfig().TTL
	if ttl <= 0 {
		return nil, errors.NewValidationError("cache TTL must be positive")
	}

	fetchTimeout := deps.Config.GetSchedulerConfig().FetchTimeout
	if fetchTimeout <= 0 {
		return nil, errors.NewValidationError("fetch timeout must be positive")
	}

	return &Cache{
		provider:     deps.WeatherProvider,
		store:        deps.Store,
		ttl:          ttl,
		fetchTimeout: fetchTimeout,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
	}, nil
}

// Current returns current conditions for city
func (c *Cache) Current(ctx context.Context, city string) (*ports.CurrentWeather, error) {
	city = CityKey(city)
	return getOrFetch(ctx, c, PartitionCurrent, city, func(ctx context.Context) (*ports.CurrentWeather, error) {
		return c.provider.CurrentWeather(ctx, city)
	})
}

// Forecast returns the 3-hour step forecast for city
func (c *Cache) Forecast(ctx context.Context, city string) (*ports.Forecast, error) {
	city = CityKey(city)
	return getOrFetch(ctx, c, PartitionForecast, city, func(ctx context.Context) (*ports.Forecast, error) {
		return c.provider.Forecast(ctx, city)
	})
}

// Coordinates resolves city to a geographic point
func (c *Cache) Coordinates(ctx context.Context, city string) (*ports.Coordinates, error) {
	city = CityKey(city)
	return getOrFetch(ctx, c, PartitionCoordinates, city, func(ctx context.Context) (*ports.Coordinates, error) {
		return c.provider.Coordinates(ctx, city)
	})
}

// AirQuality returns air pollution samples for a coordinate pair
func (c *Cache) AirQuality(ctx context.Context, lat, lon float64) (*ports.AirQuality, error) {
	return getOrFetch(ctx, c, PartitionAirQuality, CoordinatesKey(lat, lon), func(ctx context.Context) (*ports.AirQuality, error) {
		return c.provider.AirQuality(ctx, lat, lon)
	})
}

// Sweep drops expired entries when the backing store keeps them around.
func (c *Cache) Sweep(ctx context.Context) int {
	sweeper, ok := c.store.(ports.CacheSweeper)
	if !ok {
		return 0
	}

	removed := sweeper.Sweep(ctx)
	if removed > 0 {
		c.logger.Debug("Expired cache entries removed", ports.F("removed", removed))
	}
	return removed
}

// Clear drops every cached payload so the next reads go upstream.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear weather cache: %w", err)
	}
	c.logger.Info("Weather cache cleared")
	return nil
}

func getOrFetch[T any](ctx context.Context, c *Cache, partition Partition, id string, fetch func(context.Context) (*T, error)) (*T, error) {
	key := partition.Key(id)

	if value, ok := lookup[T](ctx, c, key); ok {
		c.metrics.RecordCacheHit(partition.String())
		return value, nil
	}
	c.metrics.RecordCacheMiss(partition.String())

	flight := c.flights.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		// A flight that just finished may have filled the key.
		if value, ok := lookup[T](ctx, c, key); ok {
			return value, nil
		}

		start := time.Now()
		value, err := fetch(ctx)
		c.metrics.RecordCacheFetchLatency(partition.String(), time.Since(start))
		if err == nil && value == nil {
			err = errors.NewExternalAPIError(fmt.Sprintf("empty %s payload", partition), nil)
		}
		if err != nil {
			c.metrics.RecordCacheFetchError(partition.String())
			return nil, err
		}

		c.save(ctx, key, value)
		return value, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*T), nil
	}
}

func (c *Cache) save(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", ports.F("key", key), ports.F("error", err))
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to store cache entry", ports.F("key", key), ports.F("error", err))
	}
}

func lookup[T any](ctx context.Context, c *Cache, key string) (*T, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil || data == nil {
		return nil, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		c.logger.Warn("Dropping undecodable cache entry", ports.F("key", key), ports.F("error", err))
		_ = c.store.Delete(ctx, key)
		return nil, false
	}
	return &value, true
}
