package subscription

import (
	"encoding/json"
	"time"
)

// Type is the kind of weather information a subscription delivers
type Type int

const (
	TypeUnknown Type = iota
	TypeWeather
	TypeHourly
	TypeDetails
	TypeSun
	TypeWind
	TypeAir
)

// AllTypes returns the catalog in seeding order
func AllTypes() []Type {
	return []Type{TypeWeather, TypeHourly, TypeSun, TypeWind, TypeAir, TypeDetails}
}

// String returns the stable catalog code of the type
func (t Type) String() string {
	switch t {
	case TypeWeather:
		return "weather"
	case TypeHourly:
		return "hourly"
	case TypeDetails:
		return "details"
	case TypeSun:
		return "sun"
	case TypeWind:
		return "wind"
	case TypeAir:
		return "air"
	default:
		return "unknown"
	}
}

// Description returns the human-readable catalog description
func (t Type) Description() string {
	switch t {
	case TypeWeather:
		return "Current Weather"
	case TypeHourly:
		return "Hourly Forecast"
	case TypeDetails:
		return "Full Details"
	case TypeSun:
		return "Sunrise & Sunset"
	case TypeWind:
		return "Wind"
	case TypeAir:
		return "Air Quality"
	default:
		return "Unknown"
	}
}

// IsValid checks if the type is part of the catalog
func (t Type) IsValid() bool {
	return t >= TypeWeather && t <= TypeAir
}

// TypeFromString converts a catalog code to Type
func TypeFromString(s string) Type {
	switch s {
	case "weather":
		return TypeWeather
	case "hourly":
		return TypeHourly
	case "details":
		return TypeDetails
	case "sun":
		return TypeSun
	case "wind":
		return TypeWind
	case "air":
		return TypeAir
	default:
		return TypeUnknown
	}
}

// UnmarshalJSON implements json.Unmarshaler interface
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = TypeFromString(s)
	return nil
}

// MarshalJSON implements json.Marshaler interface
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalText implements encoding.TextUnmarshaler for form parsing
func (t *Type) UnmarshalText(text []byte) error {
	*t = TypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for form parsing
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// User is the owner of subscriptions, identified by a messaging platform id
type User struct {
	ID         uint
	ExternalID string
	CreatedAt  time.Time
}

// Subscription represents a recurring delivery of one kind of weather info
// for one city at one time of day
type Subscription struct {
	ID              uint
	UserID          uint
	ExternalID      string
	City            string
	Type            Type
	TypeDescription string
	Time            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TypeInfo is a catalog entry as exposed to callers
type TypeInfo struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
