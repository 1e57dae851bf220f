package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidClockTime(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"00:00", true},
		{"07:30", true},
		{"23:59", true},
		{"24:00", false},
		{"7:30", false},
		{"07:60", false},
		{"07-30", false},
		{" 07:30", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidClockTime(tt.input))
		})
	}
}

func TestNormalizeCity(t *testing.T) {
	assert.Equal(t, "paris", NormalizeCity("  Paris "))
	assert.Equal(t, "new york", NormalizeCity("NEW YORK"))
	assert.Equal(t, "", NormalizeCity("   "))
}
