package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"weatherbot.app/internal/ports"
)

type HealthResponse struct {
	Status     string                        `json:"status"`
	Components map[string]ports.HealthStatus `json:"components"`
}

// health handles GET /health requests
func (s *HTTPServerAdapter) health(c *gin.Context) {
	results := s.healthChecker.CheckAll(c.Request.Context())

	if !ports.AllHealthy(results) {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Components: results})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Components: results})
}
