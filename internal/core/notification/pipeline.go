package notification

import (
	"context"
	"fmt"

	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// recipe fetches what a subscription type needs and renders it.
// An error means the message is skipped for this tick.
type recipe func(ctx context.Context, source WeatherSource, city string) (string, error)

var recipes = map[subscription.Type]recipe{
	subscription.TypeWeather: currentRecipe(FormatWeather),
	subscription.TypeHourly:  hourlyRecipe,
	subscription.TypeDetails: currentRecipe(FormatDetails),
	subscription.TypeSun:     currentRecipe(FormatSunriseSunset),
	subscription.TypeWind:    currentRecipe(FormatWind),
	subscription.TypeAir:     airRecipe,
}

func currentRecipe(format func(*ports.CurrentWeather) string) recipe {
	return func(ctx context.Context, source WeatherSource, city string) (string, error) {
		w, err := source.Current(ctx, city)
		if err != nil {
			return "", err
		}
		return format(w), nil
	}
}

func hourlyRecipe(ctx context.Context, source WeatherSource, city string) (string, error) {
	f, err := source.Forecast(ctx, city)
	if err != nil {
		return "", err
	}
	if len(f.List) == 0 {
		return "", errors.NewExternalAPIError("forecast has no entries", nil)
	}
	return FormatHourly(city, f), nil
}

func airRecipe(ctx context.Context, source WeatherSource, city string) (string, error) {
	coords, err := source.Coordinates(ctx, city)
	if err != nil {
		return "", fmt.Errorf("resolve coordinates: %w", err)
	}
	air, err := source.AirQuality(ctx, coords.Lat, coords.Lon)
	if err != nil {
		return "", err
	}
	if len(air.List) == 0 {
		return "", errors.NewExternalAPIError("air quality has no samples", nil)
	}
	return FormatAirQuality(city, air.List[0]), nil
}

// Pipeline turns a due subscription into a message using cached upstream data
type Pipeline struct {
	source WeatherSource
	logger ports.Logger
}

func NewPipeline(source WeatherSource, logger ports.Logger) (*Pipeline, error) {
	if source == nil {
		return nil, errors.NewValidationError("weather source is required")
	}
	if logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	return &Pipeline{source: source, logger: logger}, nil
}

// Process renders the message for sub. It reports false when the type is not
// in the catalog, the upstream data is unavailable or the rendered text is empty.
func (p *Pipeline) Process(ctx context.Context, sub *subscription.Subscription) (Message, bool) {
	run, ok := recipes[sub.Type]
	if !ok {
		p.logger.Warn("No recipe for subscription type",
			ports.F("subscriptionID", sub.ID),
			ports.F("type", sub.Type.String()))
		return Message{}, false
	}

	text, err := run(ctx, p.source, sub.City)
	if err != nil {
		p.logger.Warn("Skipping notification",
			ports.F("subscriptionID", sub.ID),
			ports.F("city", sub.City),
			ports.F("type", sub.Type.String()),
			ports.F("error", err))
		return Message{}, false
	}
	if text == "" {
		return Message{}, false
	}

	return Message{RecipientID: sub.ExternalID, Type: sub.Type, Text: text}, true
}
