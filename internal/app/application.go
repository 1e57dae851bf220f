package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"weatherbot.app/internal/adapters/api"
	"weatherbot.app/internal/adapters/infrastructure"
	"weatherbot.app/internal/adapters/scheduler"
	"weatherbot.app/internal/config"
	"weatherbot.app/internal/core/notification"
	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/internal/core/weather"
	"weatherbot.app/internal/ports"
)

type Application struct {
	config *config.Config
	deps   *DependencyContainer

	// Use Cases
	subscriptionUseCase *subscription.UseCase
	weatherCache        *weather.Cache
	pipeline            *notification.Pipeline
	notificationUseCase *notification.UseCase

	// Adapters
	httpServer *http.Server
	router     *gin.Engine
	scheduler  *scheduler.Scheduler

	// Infrastructure
	ports *ports.ApplicationPorts
}

func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	deps, err := NewDependencyContainer(cfg, DependencyOptions{})
	if err != nil {
		return nil, fmt.Errorf("create dependency container: %w", err)
	}

	app, err := NewApplicationWithDependencies(cfg, deps)
	if err != nil {
		_ = deps.Cleanup()
		return nil, err
	}
	return app, nil
}

// NewApplicationWithDependencies creates an application with provided dependencies
func NewApplicationWithDependencies(cfg *config.Config, deps *DependencyContainer) (*Application, error) {
	app := &Application{
		config: cfg,
		deps:   deps,
		ports:  deps.ApplicationPorts(),
	}

	if err := app.initializeUseCases(); err != nil {
		return nil, fmt.Errorf("initialize use cases: %w", err)
	}

	if err := app.initializeAdapters(); err != nil {
		return nil, fmt.Errorf("initialize adapters: %w", err)
	}

	return app, nil
}

func (a *Application) initializeUseCases() error {
	slog.Info("Initializing use cases...")

	subscriptionUseCase, err := subscription.NewUseCase(subscription.UseCaseDependencies{
		SubscriptionRepo: a.ports.SubscriptionRepository,
		Logger:           a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create subscription use case: %w", err)
	}
	a.subscriptionUseCase = subscriptionUseCase

	weatherCache, err := weather.NewCache(weather.CacheDependencies{
		WeatherProvider: a.ports.WeatherProvider,
		Store:           a.ports.CacheProvider,
		Config:          a.ports.ConfigProvider,
		Logger:          a.ports.Logger,
		Metrics:         a.ports.CacheMetrics,
	})
	if err != nil {
		return fmt.Errorf("create weather cache: %w", err)
	}
	a.weatherCache = weatherCache

	pipeline, err := notification.NewPipeline(weatherCache, a.ports.Logger)
	if err != nil {
		return fmt.Errorf("create notification pipeline: %w", err)
	}
	a.pipeline = pipeline

	notificationUseCase, err := notification.NewUseCase(notification.UseCaseDependencies{
		Subscriptions: subscriptionUseCase,
		Pipeline:      pipeline,
		Notifier:      a.ports.Notifier,
		Config:        a.ports.ConfigProvider,
		Logger:        a.ports.Logger,
		Metrics:       a.ports.NotificationMetrics,
	})
	if err != nil {
		return fmt.Errorf("create notification use case: %w", err)
	}
	a.notificationUseCase = notificationUseCase

	slog.Info("Use cases initialized successfully")
	return nil
}

func (a *Application) initializeAdapters() error {
	slog.Info("Initializing adapters...")

	systemHealthChecker := infrastructure.NewSystemHealthChecker(infrastructure.SystemHealthCheckerConfig{
		DatabaseChecker:   infrastructure.NewDatabaseHealthChecker(a.deps.Database()),
		WeatherAPIChecker: infrastructure.NewWeatherProviderHealthChecker(a.ports.WeatherProvider, a.deps.Breaker()),
		TelegramChecker:   infrastructure.NewTelegramHealthChecker(a.config.Telegram.APIBaseURL, a.config.Telegram.BotToken),
		CacheChecker:      infrastructure.NewCacheHealthChecker(a.ports.CacheProvider, a.config.Cache.Type.String()),
		ConfigProvider:    a.ports.ConfigProvider,
	})

	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if g, ok := a.deps.registry.(prometheus.Gatherer); ok {
		gatherer = g
	}

	httpAdapter, err := api.NewHTTPServerAdapter(api.ServerOptions{
		Config: api.ServerConfig{
			Port: a.config.Server.Port,
		},
		SubscriptionUseCase: a.subscriptionUseCase,
		Previewer:           a.pipeline,
		HealthChecker:       systemHealthChecker,
		Cache:               a.weatherCache,
		Gatherer:            gatherer,
	})
	if err != nil {
		return fmt.Errorf("create HTTP adapter: %w", err)
	}

	// Store router for testing access
	a.router = httpAdapter.GetRouter()

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	location, err := a.config.Scheduler.Location()
	if err != nil {
		return fmt.Errorf("resolve scheduler timezone: %w", err)
	}

	a.scheduler, err = scheduler.NewScheduler(scheduler.Params{
		CronSpec:   a.config.Scheduler.CronSpec,
		Location:   location,
		QueueSize:  a.config.Scheduler.QueueSize,
		Dispatcher: a.notificationUseCase,
		Logger:     a.ports.Logger,
		Sweeper:    a.weatherCache,
		SweepEvery: a.config.Cache.SweepIntervalMinutes,
	})
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	slog.Info("Adapters initialized successfully")
	return nil
}

// Bootstrap seeds the subscription catalog. Safe to run on every start.
func (a *Application) Bootstrap(ctx context.Context) error {
	return a.subscriptionUseCase.SeedTypes(ctx)
}

func (a *Application) Start(ctx context.Context) error {
	slog.Info("Starting application...")

	if err := a.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	if a.config.Scheduler.Enabled {
		// Only Shutdown stops the scheduler, so a cancelled ctx cannot abort an in-flight tick.
		if err := a.scheduler.Start(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	} else {
		slog.Warn("Notification scheduler disabled")
	}

	slog.Info("Starting HTTP server", "port", a.config.Server.Port)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

// Shutdown stops the scheduler and the HTTP server within ctx. Resources are
// released on every path, including when ctx expires first.
func (a *Application) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")
	defer func() {
		if err := a.deps.Cleanup(); err != nil {
			slog.Warn("Error releasing resources", "error", err)
		}
	}()

	if a.config.Scheduler.Enabled {
		if err := a.scheduler.Stop(ctx); err != nil {
			slog.Warn("Scheduler did not stop in time", "error", err)
		}
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Error shutting down HTTP server", "error", err)
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *Application) Config() *config.Config {
	return a.config
}

// GetRouter returns the Gin router for testing
func (a *Application) GetRouter() *gin.Engine {
	return a.router
}

// GetSubscriptionUseCase returns the subscription use case for testing
func (a *Application) GetSubscriptionUseCase() *subscription.UseCase {
	return a.subscriptionUseCase
}

// GetNotificationUseCase returns the notification use case for testing
func (a *Application) GetNotificationUseCase() *notification.UseCase {
	return a.notificationUseCase
}
