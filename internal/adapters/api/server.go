// Package api is the admin HTTP surface of the bot: catalog, subscription
// management, message previews, health and metrics.
package api

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"weatherbot.app/internal/core/notification"
	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port int
}

// HTTPServerAdapter implements HTTP server using Gin framework
type HTTPServerAdapter struct {
	router              *gin.Engine
	config              ServerConfig
	subscriptionUseCase SubscriptionUseCase
	previewer           MessagePreviewer
	healthChecker       ports.SystemHealthChecker
	cache               CacheFlusher
	gatherer            prometheus.Gatherer
}

// SubscriptionUseCase is the part of the subscription store the API exposes
type SubscriptionUseCase interface {
	ListTypes(ctx context.Context) ([]subscription.TypeInfo, error)
	AddSubscriptions(ctx context.Context, params subscription.AddManyParams) ([]*subscription.Subscription, error)
	RemoveSubscriptions(ctx context.Context, params subscription.RemoveParams) (int64, error)
	ListSubscriptions(ctx context.Context, externalID string) ([]*subscription.Subscription, error)
}

// CacheFlusher drops every cached upstream payload
type CacheFlusher interface {
	Clear(ctx context.Context) error
}

// MessagePreviewer renders a message without delivering it
type MessagePreviewer interface {
	Process(ctx context.Context, sub *subscription.Subscription) (notification.Message, bool)
}

type ServerOptions struct {
	Config              ServerConfig
	SubscriptionUseCase SubscriptionUseCase
	Previewer           MessagePreviewer
	HealthChecker       ports.SystemHealthChecker
	Cache               CacheFlusher
	// Gatherer backs GET /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}
	if err := RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	server := &HTTPServerAdapter{
		router:              gin.Default(),
		config:              opts.Config,
		subscriptionUseCase: opts.SubscriptionUseCase,
		previewer:           opts.Previewer,
		healthChecker:       opts.HealthChecker,
		cache:               opts.Cache,
		gatherer:            gatherer,
	}

	server.setupRoutes()
	return server, nil
}

func (opts *ServerOptions) Validate() error {
	if opts.SubscriptionUseCase == nil {
		return errors.NewValidationError("subscription use case is required")
	}
	if opts.Previewer == nil {
		return errors.NewValidationError("message previewer is required")
	}
	if opts.HealthChecker == nil {
		return errors.NewValidationError("health checker is required")
	}
	if opts.Cache == nil {
		return errors.NewValidationError("cache is required")
	}
	return nil
}

func (s *HTTPServerAdapter) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/types", s.listTypes)
		api.POST("/subscriptions", s.addSubscriptions)
		api.GET("/subscriptions/:external_id", s.listSubscriptions)
		api.DELETE("/subscriptions/:external_id", s.removeSubscriptions)
		api.GET("/preview", s.preview)
		api.DELETE("/cache", s.clearCache)
	}

	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
}

// GetRouter returns the router for testing purposes
func (s *HTTPServerAdapter) GetRouter() *gin.Engine {
	return s.router
}
