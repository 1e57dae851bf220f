package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/pkg/validation"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// validateClock accepts a 24-hour "HH:MM" time of day
func validateClock(fl validator.FieldLevel) bool {
	return validation.IsValidClockTime(fl.Field().String())
}

// validateSubscriptionType accepts catalog codes only
func validateSubscriptionType(fl validator.FieldLevel) bool {
	return subscription.TypeFromString(fl.Field().String()).IsValid()
}

// RegisterValidators adds the "clock" and "subtype" tags to gin's binding validator.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if registerErr = v.RegisterValidation("clock", validateClock); registerErr != nil {
			return
		}
		registerErr = v.RegisterValidation("subtype", validateSubscriptionType)
	})
	return registerErr
}
