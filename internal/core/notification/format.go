package notification

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"weatherbot.app/internal/ports"
)

// hourlyEntries is 24 hours of 3-hour forecast steps.
const hourlyEntries = 8

// Checked in order; the first keyword contained in the description wins.
var conditionIcons = []struct {
	keyword string
	icon    string
}{
	{"clear", "☀️"},
	{"clouds", "☁️"},
	{"rain", "🌧️"},
	{"drizzle", "🌦️"},
	{"thunderstorm", "⛈️"},
	{"snow", "❄️"},
	{"mist", "🌫️"},
	{"fog", "🌫️"},
}

const defaultIcon = "🌡️"

var compassPoints = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

var airPollutants = []struct {
	key   string
	label string
}{
	{"co", "CO"},
	{"no", "NO"},
	{"no2", "NO₂"},
	{"o3", "O₃"},
	{"so2", "SO₂"},
	{"pm2_5", "PM2.5"},
	{"pm10", "PM10"},
	{"nh3", "NH₃"},
}

// ConditionIcon picks an emoji for a weather description
func ConditionIcon(description string) string {
	d := strings.ToLower(description)
	for _, c := range conditionIcons {
		if strings.Contains(d, c.keyword) {
			return c.icon
		}
	}
	return defaultIcon
}

// CompassDirection converts meteorological degrees to one of eight compass points
func CompassDirection(deg float64) string {
	ix := int(math.Floor((deg+22.5)/45)) % len(compassPoints)
	if ix < 0 {
		ix += len(compassPoints)
	}
	return compassPoints[ix]
}

// AQILabel describes an OpenWeatherMap air quality index (1..5)
func AQILabel(aqi int) string {
	switch aqi {
	case 1:
		return "Good 🟢"
	case 2:
		return "Fair 🟡"
	case 3:
		return "Moderate 🟠"
	case 4:
		return "Poor 🟣"
	case 5:
		return "Very Poor 🔴"
	default:
		return "Unknown"
	}
}

// FormatWeather renders the current conditions summary
func FormatWeather(w *ports.CurrentWeather) string {
	desc := description(w.Weather)

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b>\n", ConditionIcon(desc), html.EscapeString(w.Name))
	fmt.Fprintf(&b, "🕒 <b>Time:</b> %s\n", localTime(w.Dt, w.Timezone, "2006-01-02 15:04"))
	fmt.Fprintf(&b, "🌡️ <b>Temperature:</b> %.1f°C (feels %.1f°C)\n", w.Main.Temp, w.Main.FeelsLike)
	fmt.Fprintf(&b, "☁️ <b>Weather:</b> %s\n", capitalize(desc))
	fmt.Fprintf(&b, "💨 <b>Wind:</b> %s m/s\n", number(w.Wind.Speed))
	fmt.Fprintf(&b, "💧 <b>Humidity:</b> %d%%\n", w.Main.Humidity)
	fmt.Fprintf(&b, "🔽 <b>Pressure:</b> %d hPa", w.Main.Pressure)
	return b.String()
}

// FormatHourly renders the next 24 hours of the forecast
func FormatHourly(city string, f *ports.Forecast) string {
	name := f.City.Name
	if name == "" {
		name = city
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🕒 <b>Hourly forecast for %s (next 24h):</b>\n", html.EscapeString(name))

	entries := f.List
	if len(entries) > hourlyEntries {
		entries = entries[:hourlyEntries]
	}
	for _, e := range entries {
		desc := description(e.Weather)
		fmt.Fprintf(&b, "\n<b>%s</b> %s %s, %.1f°C (feels %.1f°C), 💨 %s m/s, 💧 %d%%",
			entryClock(e), ConditionIcon(desc), capitalize(desc),
			e.Main.Temp, e.Main.FeelsLike, number(e.Wind.Speed), e.Main.Humidity)
	}
	return b.String()
}

// FormatDetails renders every field of the current conditions payload
func FormatDetails(w *ports.CurrentWeather) string {
	desc := description(w.Weather)

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Detailed weather for %s, %s</b>\n",
		ConditionIcon(desc), html.EscapeString(w.Name), html.EscapeString(w.Sys.Country))
	fmt.Fprintf(&b, "🕒 <b>Time:</b> %s\n", localTime(w.Dt, w.Timezone, "2006-01-02 15:04"))
	fmt.Fprintf(&b, "🌍 <b>Coordinates:</b> %s, %s\n", number(w.Coord.Lat), number(w.Coord.Lon))
	fmt.Fprintf(&b, "☁️ <b>Weather:</b> %s\n", capitalize(desc))
	fmt.Fprintf(&b, "🌡️ <b>Temperature:</b> %.1f°C (feels %.1f°C)\n", w.Main.Temp, w.Main.FeelsLike)
	fmt.Fprintf(&b, "🔼 <b>Max:</b> %.1f°C   🔽 <b>Min:</b> %.1f°C\n", w.Main.TempMax, w.Main.TempMin)
	fmt.Fprintf(&b, "💧 <b>Humidity:</b> %d%%\n", w.Main.Humidity)
	fmt.Fprintf(&b, "🔽 <b>Pressure:</b> %d hPa\n", w.Main.Pressure)
	fmt.Fprintf(&b, "🌊 <b>Sea level:</b> %s hPa\n", optionalInt(w.Main.SeaLevel))
	fmt.Fprintf(&b, "⛰️ <b>Ground level:</b> %s hPa\n", optionalInt(w.Main.GrndLevel))
	fmt.Fprintf(&b, "🌬️ <b>Wind:</b> %s m/s, deg: %s, gust: %s\n",
		number(w.Wind.Speed), optionalFloat(w.Wind.Deg), optionalFloat(w.Wind.Gust))
	fmt.Fprintf(&b, "🌫️ <b>Cloudiness:</b> %d%%\n", w.Clouds.All)
	fmt.Fprintf(&b, "👁️ <b>Visibility:</b> %s m\n", optionalInt(w.Visibility))
	fmt.Fprintf(&b, "🌅 <b>Sunrise:</b> %s   🌇 <b>Sunset:</b> %s\n",
		localClock(w.Sys.Sunrise, w.Timezone), localClock(w.Sys.Sunset, w.Timezone))
	return b.String()
}

// FormatSunriseSunset renders sunrise and sunset in the city's local time
func FormatSunriseSunset(w *ports.CurrentWeather) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌅 <b>Sunrise and Sunset in %s, %s</b>\n",
		html.EscapeString(w.Name), html.EscapeString(w.Sys.Country))
	fmt.Fprintf(&b, "🌞 <b>Sunrise:</b> %s\n", localClock(w.Sys.Sunrise, w.Timezone))
	fmt.Fprintf(&b, "🌇 <b>Sunset:</b> %s", localClock(w.Sys.Sunset, w.Timezone))
	return b.String()
}

// FormatWind renders wind speed, direction and gusts
func FormatWind(w *ports.CurrentWeather) string {
	deg, dir := "-", "-"
	if w.Wind.Deg != nil {
		deg = number(*w.Wind.Deg)
		dir = CompassDirection(*w.Wind.Deg)
	}
	gust := "No data"
	if w.Wind.Gust != nil {
		gust = number(*w.Wind.Gust) + " m/s"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💨 <b>Wind in %s, %s</b>\n",
		html.EscapeString(w.Name), html.EscapeString(w.Sys.Country))
	fmt.Fprintf(&b, "🌬️ <b>Speed:</b> %s m/s\n", number(w.Wind.Speed))
	fmt.Fprintf(&b, "🧭 <b>Direction:</b> %s° (%s)\n", deg, dir)
	fmt.Fprintf(&b, "💨 <b>Gusts:</b> %s", gust)
	return b.String()
}

// FormatAirQuality renders the AQI and pollutant concentrations of one sample
func FormatAirQuality(city string, entry ports.AirQualityEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌬️ <b>Air quality in %s:</b>\n", html.EscapeString(city))
	fmt.Fprintf(&b, "AQI: <b>%d</b> (%s)", entry.Main.AQI, AQILabel(entry.Main.AQI))
	for _, p := range airPollutants {
		value := "-"
		if v, ok := entry.Components[p.key]; ok {
			value = number(v)
		}
		fmt.Fprintf(&b, "\n• %s: %s μg/m³", p.label, value)
	}
	return b.String()
}

func description(conditions []ports.Condition) string {
	if len(conditions) == 0 {
		return ""
	}
	return conditions[0].Description
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return number(*v)
}

// localClock shifts a unix timestamp by the payload's UTC offset in seconds.
func localClock(ts int64, offset int) string {
	return localTime(ts, offset, "15:04")
}

func localTime(ts int64, offset int, layout string) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts+int64(offset), 0).UTC().Format(layout)
}

func entryClock(e ports.ForecastEntry) string {
	// dt_txt is "YYYY-MM-DD HH:MM:SS" in UTC
	if _, clock, ok := strings.Cut(e.DtTxt, " "); ok && len(clock) >= 5 {
		return clock[:5]
	}
	return time.Unix(e.Dt, 0).UTC().Format("15:04")
}
