package validation

import (
	"regexp"
	"strings"
)

var clockTimeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// IsValidClockTime reports whether s is a 24-hour "HH:MM" time of day
func IsValidClockTime(s string) bool {
	return clockTimeRegex.MatchString(s)
}

// IsNotEmpty checks if string is not empty after trimming
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// NormalizeCity trims and lower-cases a city name so that equal cities share a key
func NormalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
