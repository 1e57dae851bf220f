package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/pkg/errors"
	"weatherbot.app/pkg/validation"
)

// PreviewResponse carries the message a subscription would receive right now
type PreviewResponse struct {
	City string `json:"city"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// preview handles GET /api/preview?city=&type= requests without sending anything
func (s *HTTPServerAdapter) preview(c *gin.Context) {
	city := validation.NormalizeCity(c.Query("city"))
	if city == "" {
		s.handleError(c, errors.NewValidationError("city parameter is required"))
		return
	}
	typeCode := c.DefaultQuery("type", subscription.TypeWeather.String())
	typ := subscription.TypeFromString(typeCode)
	if !typ.IsValid() {
		s.handleError(c, errors.NewUnknownSubscriptionTypeError(typeCode))
		return
	}

	msg, ok := s.previewer.Process(c.Request.Context(), &subscription.Subscription{City: city, Type: typ})
	if !ok {
		slog.Debug("Preview unavailable", "city", city, "type", typeCode)
		s.handleError(c, errors.NewExternalAPIError("weather data unavailable", nil))
		return
	}

	c.JSON(http.StatusOK, PreviewResponse{City: city, Type: typ.String(), Text: msg.Text})
}

type ClearCacheResponse struct {
	Status string `json:"status"`
}

// clearCache handles DELETE /api/cache requests
func (s *HTTPServerAdapter) clearCache(c *gin.Context) {
	if err := s.cache.Clear(c.Request.Context()); err != nil {
		slog.Error("Clear cache error", "error", err)
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ClearCacheResponse{Status: "cleared"})
}
