package notification

import (
	"context"

	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/internal/ports"
)

// Message is a rendered notification ready for delivery
type Message struct {
	RecipientID string
	Type        subscription.Type
	Text        string
}

// WeatherSource is the cached view of upstream data the pipeline reads from
type WeatherSource interface {
	Current(ctx context.Context, city string) (*ports.CurrentWeather, error)
	Forecast(ctx context.Context, city string) (*ports.Forecast, error)
	Coordinates(ctx context.Context, city string) (*ports.Coordinates, error)
	AirQuality(ctx context.Context, lat, lon float64) (*ports.AirQuality, error)
}

// DueSubscriptionFinder returns the subscriptions scheduled for a clock time
type DueSubscriptionFinder interface {
	FindDueSubscriptions(ctx context.Context, clockTime string) ([]*subscription.Subscription, error)
}
