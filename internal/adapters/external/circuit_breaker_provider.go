package external

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/sony/gobreaker"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// CircuitBreakerSettings controls when the upstream is considered unavailable
type CircuitBreakerSettings struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// CircuitBreakerWeatherProvider stops calling the upstream after consecutive failures
// and fails fast until the open timeout elapses.
type CircuitBreakerWeatherProvider struct {
	provider ports.WeatherProvider
	breaker  *gobreaker.CircuitBreaker
}

func NewCircuitBreakerWeatherProvider(provider ports.WeatherProvider, settings CircuitBreakerSettings, logger ports.Logger) ports.WeatherProvider {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider.GetProviderName(),
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Unknown cities and rejected input say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.IsNotFoundError(err) || errors.IsValidationError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Weather provider circuit state changed",
				ports.F("provider", name),
				ports.F("from", from.String()),
				ports.F("to", to.String()))
		},
	})

	return &CircuitBreakerWeatherProvider{provider: provider, breaker: breaker}
}

func (p *CircuitBreakerWeatherProvider) CurrentWeather(ctx context.Context, city string) (*ports.CurrentWeather, error) {
	return execute(p.breaker, func() (*ports.CurrentWeather, error) {
		return p.provider.CurrentWeather(ctx, city)
	})
}

func (p *CircuitBreakerWeatherProvider) Forecast(ctx context.Context, city string) (*ports.Forecast, error) {
	return execute(p.breaker, func() (*ports.Forecast, error) {
		return p.provider.Forecast(ctx, city)
	})
}

func (p *CircuitBreakerWeatherProvider) Coordinates(ctx context.Context, city string) (*ports.Coordinates, error) {
	return execute(p.breaker, func() (*ports.Coordinates, error) {
		return p.provider.Coordinates(ctx, city)
	})
}

func (p *CircuitBreakerWeatherProvider) AirQuality(ctx context.Context, lat, lon float64) (*ports.AirQuality, error) {
	return execute(p.breaker, func() (*ports.AirQuality, error) {
		return p.provider.AirQuality(ctx, lat, lon)
	})
}

func (p *CircuitBreakerWeatherProvider) GetProviderName() string {
	return p.provider.GetProviderName()
}

// State exposes the breaker state for health reporting
func (p *CircuitBreakerWeatherProvider) State() gobreaker.State {
	return p.breaker.State()
}

func execute[T any](breaker *gobreaker.CircuitBreaker, call func() (*T, error)) (*T, error) {
	result, err := breaker.Execute(func() (interface{}, error) {
		return call()
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.NewExternalAPIError("weather provider circuit is open", err)
		}
		return nil, err
	}
	return result.(*T), nil
}
