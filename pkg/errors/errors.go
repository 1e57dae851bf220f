package errors

import (
	"errors"
	"fmt"
)

// ErrorType is the category of an AppError. Adapters map categories to
// transport responses; the scheduler maps them to skip or failure outcomes.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound
	ErrorTypeAlreadyExists
	ErrorTypeUnknownSubscriptionType

	// Infrastructure
	ErrorTypeDatabase
	ErrorTypeExternalAPI
	ErrorTypeDelivery

	ErrorTypeConfiguration
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeAlreadyExists:
		return "ALREADY_EXISTS_ERROR"
	case ErrorTypeUnknownSubscriptionType:
		return "UNKNOWN_SUBSCRIPTION_TYPE"
	case ErrorTypeDatabase:
		return "DATABASE_ERROR"
	case ErrorTypeExternalAPI:
		return "EXTERNAL_API_ERROR"
	case ErrorTypeDelivery:
		return "DELIVERY_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Short aliases used throughout the adapters
const (
	ValidationError              = ErrorTypeValidation
	NotFoundError                = ErrorTypeNotFound
	AlreadyExistsError           = ErrorTypeAlreadyExists
	UnknownSubscriptionTypeError = ErrorTypeUnknownSubscriptionType
	DatabaseError                = ErrorTypeDatabase
	ExternalAPIError             = ErrorTypeExternalAPI
	DeliveryError                = ErrorTypeDelivery
	ConfigurationError           = ErrorTypeConfiguration
)

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain/Business Logic Error Constructors
func NewValidationError(message string) *AppError {
	return New(ValidationError, message)
}

func NewNotFoundError(message string) *AppError {
	return New(NotFoundError, message)
}

func NewAlreadyExistsError(message string) *AppError {
	return New(AlreadyExistsError, message)
}

// NewUnknownSubscriptionTypeError reports a type code missing from the catalog.
func NewUnknownSubscriptionTypeError(code string) *AppError {
	return New(UnknownSubscriptionTypeError, fmt.Sprintf("unknown subscription type %q", code))
}

// Infrastructure Error Constructors
func NewDatabaseError(message string, cause error) *AppError {
	return Wrap(DatabaseError, message, cause)
}

func NewExternalAPIError(message string, cause error) *AppError {
	return Wrap(ExternalAPIError, message, cause)
}

func NewDeliveryError(message string, cause error) *AppError {
	return Wrap(DeliveryError, message, cause)
}

// System/Configuration Error Constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ConfigurationError, message, cause)
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// TypeOf returns the type of the first AppError in err's chain.
func TypeOf(err error) ErrorType {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// Helper functions for error type checking
func IsNotFoundError(err error) bool {
	return TypeOf(err) == NotFoundError
}

func IsAlreadyExistsError(err error) bool {
	return TypeOf(err) == AlreadyExistsError
}

func IsUnknownSubscriptionTypeError(err error) bool {
	return TypeOf(err) == UnknownSubscriptionTypeError
}

func IsValidationError(err error) bool {
	return TypeOf(err) == ValidationError
}

func IsDatabaseError(err error) bool {
	return TypeOf(err) == DatabaseError
}

func IsExternalAPIError(err error) bool {
	return TypeOf(err) == ExternalAPIError
}

func IsDeliveryError(err error) bool {
	return TypeOf(err) == DeliveryError
}

func IsConfigurationError(err error) bool {
	return TypeOf(err) == ConfigurationError
}
