package infrastructure

import (
	"context"

	"github.com/sony/gobreaker"
	"weatherbot.app/internal/ports"
)

// BreakerStateReporter exposes the state of a circuit breaker
type BreakerStateReporter interface {
	State() gobreaker.State
}

// WeatherProviderHealthChecker reports the upstream provider and its breaker state
type WeatherProviderHealthChecker struct {
	provider ports.WeatherProvider
	breaker  BreakerStateReporter
}

// NewWeatherProviderHealthChecker creates a new weather provider health checker.
// breaker may be nil when the provider is not guarded.
func NewWeatherProviderHealthChecker(provider ports.WeatherProvider, breaker BreakerStateReporter) *WeatherProviderHealthChecker {
	return &WeatherProviderHealthChecker{provider: provider, breaker: breaker}
}

// Check reports unhealthy while the breaker is open
func (w *WeatherProviderHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "weatherAPI",
		Status:    "healthy",
		Details:   make(map[string]interface{}),
	}

	if w.provider == nil {
		status.Status = "unhealthy"
		status.Error = "weather provider is not available"
		return status
	}
	status.Details["provider"] = w.provider.GetProviderName()

	if w.breaker == nil {
		return status
	}

	state := w.breaker.State()
	status.Details["circuit"] = state.String()
	switch state {
	case gobreaker.StateOpen:
		status.Status = "unhealthy"
		status.Error = "circuit breaker is open"
	case gobreaker.StateHalfOpen:
		status.Status = "degraded"
	}

	return status
}

// TelegramHealthChecker reports the messaging configuration
type TelegramHealthChecker struct {
	apiBaseURL    string
	tokenProvided bool
}

func NewTelegramHealthChecker(apiBaseURL, botToken string) *TelegramHealthChecker {
	return &TelegramHealthChecker{apiBaseURL: apiBaseURL, tokenProvided: botToken != ""}
}

// Check verifies the notifier is configured without calling the Bot API
func (t *TelegramHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "telegram",
		Status:    "healthy",
		Details: map[string]interface{}{
			"apiBaseURL": t.apiBaseURL,
		},
	}

	if !t.tokenProvided {
		status.Status = "unhealthy"
		status.Error = "bot token is not configured"
	}
	return status
}
