package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/mocks"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

const currentWeatherJSON = `{
	"name": "Kyiv",
	"coord": {"lat": 50.45, "lon": 30.52},
	"weather": [{"main": "Clouds", "description": "overcast clouds"}],
	"main": {"temp": 12.3, "feels_like": 11.1, "temp_min": 10.0, "temp_max": 14.0, "pressure": 1012, "humidity": 81},
	"wind": {"speed": 4.2, "deg": 200},
	"clouds": {"all": 90},
	"visibility": 10000,
	"sys": {"country": "UA", "sunrise": 1700000000, "sunset": 1700030000},
	"timezone": 7200,
	"dt": 1700010000
}`

func newTestOpenWeatherMap(t *testing.T, handler http.HandlerFunc) ports.WeatherProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenWeatherMapProviderAdapter(OpenWeatherMapProviderParams{
		APIKey:      "test-api-key",
		DataBaseURL: server.URL + "/data/2.5",
		GeoBaseURL:  server.URL + "/geo/1.0",
		Logger:      mocks.NopLogger{},
	})
}

func TestOpenWeatherMapProvider_CurrentWeather(t *testing.T) {
	provider := newTestOpenWeatherMap(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "kyiv", r.URL.Query().Get("q"))
		assert.Equal(t, "test-api-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		_, _ = w.Write([]byte(currentWeatherJSON))
	})

	weather, err := provider.CurrentWeather(context.Background(), "kyiv")

	require.NoError(t, err)
	assert.Equal(t, "Kyiv", weather.Name)
	assert.Equal(t, 12.3, weather.Main.Temp)
	assert.Equal(t, 81, weather.Main.Humidity)
	require.NotNil(t, weather.Wind.Deg)
	assert.Equal(t, 200.0, *weather.Wind.Deg)
	assert.Nil(t, weather.Wind.Gust)
	assert.Equal(t, "overcast clouds", weather.Weather[0].Description)
	assert.Equal(t, 7200, weather.Timezone)
	assert.Equal(t, int64(1700000000), weather.Sys.Sunrise)
}

func TestOpenWeatherMapProvider_Forecast(t *testing.T) {
	provider := newTestOpenWeatherMap(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		_, _ = w.Write([]byte(`{"list":[
			{"dt":1700000000,"dt_txt":"2023-11-14 21:00:00","main":{"temp":5.5},"weather":[{"main":"Rain","description":"light rain"}],"wind":{"speed":3}},
			{"dt":1700010800,"dt_txt":"2023-11-15 00:00:00","main":{"temp":4.1},"weather":[{"main":"Clear","description":"clear sky"}],"wind":{"speed":2}}
		],"city":{"name":"Lviv","timezone":7200}}`))
	})

	forecast, err := provider.Forecast(context.Background(), "lviv")

	require.NoError(t, err)
	require.Len(t, forecast.List, 2)
	assert.Equal(t, "2023-11-14 21:00:00", forecast.List[0].DtTxt)
	assert.Equal(t, "Lviv", forecast.City.Name)
}

func TestOpenWeatherMapProvider_Coordinates(t *testing.T) {
	provider := newTestOpenWeatherMap(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geo/1.0/direct", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		if r.URL.Query().Get("q") == "atlantis" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"name":"Paris","lat":48.8589,"lon":2.32,"country":"FR"}]`))
	})

	coords, err := provider.Coordinates(context.Background(), "paris")
	require.NoError(t, err)
	assert.Equal(t, 48.8589, coords.Lat)
	assert.Equal(t, 2.32, coords.Lon)

	_, err = provider.Coordinates(context.Background(), "atlantis")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestOpenWeatherMapProvider_AirQuality(t *testing.T) {
	provider := newTestOpenWeatherMap(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/air_pollution", r.URL.Path)
		assert.Equal(t, "48.8589", r.URL.Query().Get("lat"))
		assert.Equal(t, "2.32", r.URL.Query().Get("lon"))
		_, _ = w.Write([]byte(`{"list":[{"dt":1700000000,"main":{"aqi":2},"components":{"pm2_5":7.1,"pm10":11.4}}]}`))
	})

	air, err := provider.AirQuality(context.Background(), 48.8589, 2.32)

	require.NoError(t, err)
	require.Len(t, air.List, 1)
	assert.Equal(t, 2, air.List[0].Main.AQI)
	assert.Equal(t, 7.1, air.List[0].Components["pm2_5"])
}

func TestOpenWeatherMapProvider_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		checkType func(error) bool
	}{
		{"not found", http.StatusNotFound, `{"cod":"404","message":"city not found"}`, errors.IsNotFoundError},
		{"unauthorized", http.StatusUnauthorized, `{"cod":401}`, errors.IsExternalAPIError},
		{"server error", http.StatusInternalServerError, `oops`, errors.IsExternalAPIError},
		{"malformed body", http.StatusOK, `{"name":`, errors.IsExternalAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestOpenWeatherMap(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			weather, err := provider.CurrentWeather(context.Background(), "kyiv")

			assert.Nil(t, weather)
			require.Error(t, err)
			assert.True(t, tt.checkType(err))
		})
	}
}

func TestOpenWeatherMapProvider_EmptyCity(t *testing.T) {
	provider := NewOpenWeatherMapProviderAdapter(OpenWeatherMapProviderParams{Logger: mocks.NopLogger{}})

	_, err := provider.CurrentWeather(context.Background(), "")
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, "openweathermap", provider.GetProviderName())
}

func TestOpenWeatherMapProvider_ContextCancelled(t *testing.T) {
	provider := newTestOpenWeatherMap(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(currentWeatherJSON))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.CurrentWeather(ctx, "kyiv")
	assert.True(t, errors.IsExternalAPIError(err))
}
