// Package external provides adapters for external services:
// the OpenWeatherMap API, the Telegram Bot API and cache backends.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// HTTPClient interface for HTTP requests (for testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenWeatherMapProviderAdapter implements WeatherProvider port for OpenWeatherMap
type OpenWeatherMapProviderAdapter struct {
	apiKey  string
	dataURL string
	geoURL  string
	client  HTTPClient
	logger  ports.Logger
}

// OpenWeatherMapProviderParams holds parameters for creating OpenWeatherMap provider
type OpenWeatherMapProviderParams struct {
	APIKey      string
	DataBaseURL string
	GeoBaseURL  string
	Timeout     time.Duration
	Client      HTTPClient
	Logger      ports.Logger
}

// NewOpenWeatherMapProviderAdapter creates a new OpenWeatherMap provider adapter
func NewOpenWeatherMapProviderAdapter(params OpenWeatherMapProviderParams) ports.WeatherProvider {
	dataURL := params.DataBaseURL
	if dataURL == "" {
		dataURL = "https://api.openweathermap.org/data/2.5"
	}
	geoURL := params.GeoBaseURL
	if geoURL == "" {
		geoURL = "https://api.openweathermap.org/geo/1.0"
	}

	client := params.Client
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &OpenWeatherMapProviderAdapter{
		apiKey:  params.APIKey,
		dataURL: dataURL,
		geoURL:  geoURL,
		client:  client,
		logger:  params.Logger,
	}
}

// CurrentWeather retrieves current conditions for city
func (p *OpenWeatherMapProviderAdapter) CurrentWeather(ctx context.Context, city string) (*ports.CurrentWeather, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	var payload ports.CurrentWeather
	if err := p.getJSON(ctx, p.dataURL+"/weather", p.cityQuery(city), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Forecast retrieves the 5 day / 3 hour forecast for city
func (p *OpenWeatherMapProviderAdapter) Forecast(ctx context.Context, city string) (*ports.Forecast, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	var payload ports.Forecast
	if err := p.getJSON(ctx, p.dataURL+"/forecast", p.cityQuery(city), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Coordinates resolves city through the direct geocoding endpoint
func (p *OpenWeatherMapProviderAdapter) Coordinates(ctx context.Context, city string) (*ports.Coordinates, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("limit", "1")
	query.Set("appid", p.apiKey)

	var matches []ports.Coordinates
	if err := p.getJSON(ctx, p.geoURL+"/direct", query, &matches); err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no coordinates found for %q", city))
	}
	return &matches[0], nil
}

// AirQuality retrieves air pollution data for a coordinate pair
func (p *OpenWeatherMapProviderAdapter) AirQuality(ctx context.Context, lat, lon float64) (*ports.AirQuality, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("appid", p.apiKey)

	var payload ports.AirQuality
	if err := p.getJSON(ctx, p.dataURL+"/air_pollution", query, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetProviderName returns the name of this weather provider
func (p *OpenWeatherMapProviderAdapter) GetProviderName() string {
	return "openweathermap"
}

func (p *OpenWeatherMapProviderAdapter) cityQuery(city string) url.Values {
	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", p.apiKey)
	query.Set("units", "metric")
	query.Set("lang", "en")
	return query
}

func (p *OpenWeatherMapProviderAdapter) getJSON(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return errors.NewExternalAPIError("failed to build OpenWeatherMap request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.NewExternalAPIError("failed to call OpenWeatherMap", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			p.logger.Warn("Failed to close OpenWeatherMap response body", ports.F("error", closeErr))
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewNotFoundError("OpenWeatherMap has no data for the request")
	case resp.StatusCode != http.StatusOK:
		return errors.NewExternalAPIError(fmt.Sprintf("OpenWeatherMap returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewExternalAPIError("failed to decode OpenWeatherMap response", err)
	}
	return nil
}
