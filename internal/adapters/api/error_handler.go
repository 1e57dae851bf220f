package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"weatherbot.app/pkg/errors"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// errorMapping is the HTTP rendering of one error category. An empty public
// message means the AppError message is safe to show as is.
type errorMapping struct {
	status  int
	message string
}

var errorMappings = map[errors.ErrorType]errorMapping{
	errors.ValidationError:              {status: http.StatusBadRequest},
	errors.UnknownSubscriptionTypeError: {status: http.StatusBadRequest},
	errors.NotFoundError:                {status: http.StatusNotFound},
	errors.AlreadyExistsError:           {status: http.StatusConflict},
	errors.ExternalAPIError:             {status: http.StatusServiceUnavailable, message: "External service unavailable"},
	errors.DeliveryError:                {status: http.StatusServiceUnavailable, message: "Unable to deliver message"},
}

var internalError = errorMapping{status: http.StatusInternalServerError, message: "Internal server error"}

// handleError writes err as a JSON error body. Database and configuration
// failures are never exposed to the caller.
func (s *HTTPServerAdapter) handleError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		c.JSON(internalError.status, ErrorResponse{Error: internalError.message})
		return
	}

	mapping, known := errorMappings[appErr.Type]
	if !known {
		mapping = internalError
	}

	message := mapping.message
	if message == "" {
		message = appErr.Message
	}
	c.JSON(mapping.status, ErrorResponse{Error: message})
}
