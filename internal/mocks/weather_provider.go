package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"weatherbot.app/internal/ports"
)

type WeatherProvider struct {
	mock.Mock
}

var _ ports.WeatherProvider = (*WeatherProvider)(nil)

func NewWeatherProvider(t *testing.T) *WeatherProvider {
	m := &WeatherProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WeatherProvider) CurrentWeather(ctx context.Context, city string) (*ports.CurrentWeather, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.CurrentWeather), args.Error(1)
}

func (m *WeatherProvider) Forecast(ctx context.Context, city string) (*ports.Forecast, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Forecast), args.Error(1)
}

func (m *WeatherProvider) Coordinates(ctx context.Context, city string) (*ports.Coordinates, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Coordinates), args.Error(1)
}

func (m *WeatherProvider) AirQuality(ctx context.Context, lat, lon float64) (*ports.AirQuality, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.AirQuality), args.Error(1)
}

func (m *WeatherProvider) GetProviderName() string {
	args := m.Called()
	return args.String(0)
}
