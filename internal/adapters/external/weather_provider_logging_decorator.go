package external

import (
	"context"
	"time"

	"weatherbot.app/internal/ports"
)

// WeatherProviderLoggingDecorator decorates weather providers with structured logging
type WeatherProviderLoggingDecorator struct {
	provider ports.WeatherProvider
	logger   ports.Logger
}

// NewWeatherProviderLoggingDecorator creates a new logging decorator for weather providers
func NewWeatherProviderLoggingDecorator(provider ports.WeatherProvider, logger ports.Logger) ports.WeatherProvider {
	return &WeatherProviderLoggingDecorator{
		provider: provider,
		logger:   logger,
	}
}

func (d *WeatherProviderLoggingDecorator) CurrentWeather(ctx context.Context, city string) (*ports.CurrentWeather, error) {
	done := d.start("current", ports.F("city", city))
	weather, err := d.provider.CurrentWeather(ctx, city)
	if err == nil {
		done(nil, ports.F("temperature", weather.Main.Temp))
		return weather, nil
	}
	done(err)
	return nil, err
}

func (d *WeatherProviderLoggingDecorator) Forecast(ctx context.Context, city string) (*ports.Forecast, error) {
	done := d.start("forecast", ports.F("city", city))
	forecast, err := d.provider.Forecast(ctx, city)
	if err == nil {
		done(nil, ports.F("entries", len(forecast.List)))
		return forecast, nil
	}
	done(err)
	return nil, err
}

func (d *WeatherProviderLoggingDecorator) Coordinates(ctx context.Context, city string) (*ports.Coordinates, error) {
	done := d.start("coordinates", ports.F("city", city))
	coords, err := d.provider.Coordinates(ctx, city)
	if err == nil {
		done(nil, ports.F("lat", coords.Lat), ports.F("lon", coords.Lon))
		return coords, nil
	}
	done(err)
	return nil, err
}

func (d *WeatherProviderLoggingDecorator) AirQuality(ctx context.Context, lat, lon float64) (*ports.AirQuality, error) {
	done := d.start("air_quality", ports.F("lat", lat), ports.F("lon", lon))
	air, err := d.provider.AirQuality(ctx, lat, lon)
	if err == nil {
		done(nil, ports.F("samples", len(air.List)))
		return air, nil
	}
	done(err)
	return nil, err
}

// GetProviderName returns the name of the wrapped provider with logging indication
func (d *WeatherProviderLoggingDecorator) GetProviderName() string {
	return "logged(" + d.provider.GetProviderName() + ")"
}

// start logs the request and returns a callback that logs its outcome
func (d *WeatherProviderLoggingDecorator) start(operation string, fields ...ports.Field) func(err error, result ...ports.Field) {
	base := withFields([]ports.Field{
		ports.F("provider", d.provider.GetProviderName()),
		ports.F("operation", operation),
	}, fields...)

	d.logger.Info("Weather API request started", withFields(base, ports.F("event", "request"))...)
	startTime := time.Now()

	return func(err error, result ...ports.Field) {
		duration := ports.F("duration_ms", time.Since(startTime).Milliseconds())
		if err != nil {
			d.logger.Error("Weather API request failed",
				withFields(base, ports.F("event", "error"), duration, ports.F("error", err.Error()))...)
			return
		}
		d.logger.Info("Weather API request completed",
			withFields(withFields(base, ports.F("event", "response"), duration), result...)...)
	}
}

func withFields(base []ports.Field, extra ...ports.Field) []ports.Field {
	fields := make([]ports.Field, 0, len(base)+len(extra))
	fields = append(fields, base...)
	return append(fields, extra...)
}
