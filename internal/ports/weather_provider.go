package ports

import "context"

// Coordinates is a geographic point resolved for a city.
type Coordinates struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

// Condition describes the sky/precipitation state of a reading.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// MainReadings holds the temperature and pressure block of a reading.
type MainReadings struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
	SeaLevel  *int    `json:"sea_level,omitempty"`
	GrndLevel *int    `json:"grnd_level,omitempty"`
}

// Wind holds wind speed in m/s and direction in degrees.
type Wind struct {
	Speed float64  `json:"speed"`
	Deg   *float64 `json:"deg,omitempty"`
	Gust  *float64 `json:"gust,omitempty"`
}

// Clouds holds cloudiness in percent.
type Clouds struct {
	All int `json:"all"`
}

// SunTimes holds country and sunrise/sunset unix timestamps.
type SunTimes struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// CurrentWeather is the current conditions payload for a city.
type CurrentWeather struct {
	Name       string       `json:"name"`
	Coord      Coordinates  `json:"coord"`
	Weather    []Condition  `json:"weather"`
	Main       MainReadings `json:"main"`
	Wind       Wind         `json:"wind"`
	Clouds     Clouds       `json:"clouds"`
	Visibility *int         `json:"visibility,omitempty"`
	Sys        SunTimes     `json:"sys"`
	Timezone   int          `json:"timezone"`
	Dt         int64        `json:"dt"`
}

// ForecastEntry is a single 3-hour step of a forecast.
type ForecastEntry struct {
	Dt      int64        `json:"dt"`
	DtTxt   string       `json:"dt_txt"`
	Main    MainReadings `json:"main"`
	Weather []Condition  `json:"weather"`
	Wind    Wind         `json:"wind"`
}

// Forecast is the 5 day / 3 hour forecast payload for a city.
type Forecast struct {
	List []ForecastEntry `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

// AirQualityEntry is one air pollution sample.
type AirQualityEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		AQI int `json:"aqi"`
	} `json:"main"`
	Components map[string]float64 `json:"components"`
}

// AirQuality is the air pollution payload for a coordinate pair.
type AirQuality struct {
	List []AirQualityEntry `json:"list"`
}

// WeatherProvider defines the contract for the upstream weather and geocoding API.
// Any failure (transport, status, decoding) is returned as an error.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, city string) (*CurrentWeather, error)
	Forecast(ctx context.Context, city string) (*Forecast, error)
	Coordinates(ctx context.Context, city string) (*Coordinates, error)
	AirQuality(ctx context.Context, lat, lon float64) (*AirQuality, error)
	GetProviderName() string
}
