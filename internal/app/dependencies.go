package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	"weatherbot.app/internal/adapters/database"
	"weatherbot.app/internal/adapters/external"
	"weatherbot.app/internal/adapters/infrastructure"
	"weatherbot.app/internal/config"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/metrics"
)

type DependencyContainer struct {
	config   *config.Config
	db       *gorm.DB
	ports    *ports.ApplicationPorts
	breaker  infrastructure.BreakerStateReporter
	logFile  io.Closer
	registry prometheus.Registerer
}

type DependencyOptions struct {
	// Registerer receives the application collectors. Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// LogOutput replaces stdout as the primary log destination.
	LogOutput io.Writer
}

func NewDependencyContainer(cfg *config.Config, opts DependencyOptions) (*DependencyContainer, error) {
	registry := opts.Registerer
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	container := &DependencyContainer{
		config:   cfg,
		registry: registry,
	}

	logger, err := container.initializeLogger(opts.LogOutput)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	if err := container.initializeDatabase(); err != nil {
		container.closeLogFile()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	if err := container.initializePorts(logger); err != nil {
		_ = container.Cleanup()
		return nil, fmt.Errorf("initialize ports: %w", err)
	}

	return container, nil
}

func (c *DependencyContainer) initializeLogger(out io.Writer) (ports.Logger, error) {
	if out == nil {
		out = os.Stdout
	}

	if path := c.config.Log.FilePath; path != "" {
		file, err := infrastructure.OpenLogFile(path)
		if err != nil {
			return nil, err
		}
		c.logFile = file
		out = io.MultiWriter(out, file)
	}

	logger := infrastructure.NewSlogLoggerAdapter(c.config.Log, out)
	slog.SetDefault(logger.Slog())
	return logger, nil
}

func (c *DependencyContainer) initializeDatabase() error {
	slog.Info("Initializing database connection...", "driver", c.config.Database.Driver)

	db, err := database.Open(c.config.Database)
	if err != nil {
		return err
	}

	c.db = db
	slog.Info("Database connection established successfully")
	return nil
}

func (c *DependencyContainer) initializePorts(logger ports.Logger) error {
	slog.Info("Initializing ports...")

	subscriptionRepo := database.NewSubscriptionRepositoryAdapter(c.db)

	weatherCfg := c.config.Weather
	var weatherProvider ports.WeatherProvider = external.NewOpenWeatherMapProviderAdapter(external.OpenWeatherMapProviderParams{
		APIKey:      weatherCfg.OpenWeatherMapKey,
		DataBaseURL: weatherCfg.DataBaseURL,
		GeoBaseURL:  weatherCfg.GeoBaseURL,
		Timeout:     time.Duration(weatherCfg.RequestTimeoutSeconds) * time.Second,
		Logger:      logger,
	})

	weatherProvider = external.NewCircuitBreakerWeatherProvider(weatherProvider, external.CircuitBreakerSettings{
		FailureThreshold: weatherCfg.BreakerFailureThreshold,
		OpenTimeout:      time.Duration(weatherCfg.BreakerOpenSeconds) * time.Second,
	}, logger)
	if breaker, ok := weatherProvider.(infrastructure.BreakerStateReporter); ok {
		c.breaker = breaker
	}

	// Logging wraps the breaker so rejected calls are logged too
	if weatherCfg.EnableLogging {
		weatherProvider = external.NewWeatherProviderLoggingDecorator(weatherProvider, logger)
		slog.Info("Weather provider logging enabled")
	}

	cacheProvider, err := external.NewCacheProviderFactory().CreateCacheProvider(&c.config.Cache)
	if err != nil {
		slog.Error("Failed to create cache provider", "error", err)
		return fmt.Errorf("create cache provider: %w", err)
	}
	slog.Info("Cache provider initialized",
		"type", c.config.Cache.Type.String(),
		"ttl", c.config.Cache.TTL().String())

	notifier := external.NewTelegramNotifierAdapter(external.TelegramNotifierParams{
		BotToken:   c.config.Telegram.BotToken,
		APIBaseURL: c.config.Telegram.APIBaseURL,
		Timeout:    c.config.Scheduler.SendTimeout(),
		Logger:     logger,
	})

	collector := metrics.NewCollector(c.registry)

	c.ports = &ports.ApplicationPorts{
		// Weather
		WeatherProvider: weatherProvider,

		// Subscription
		SubscriptionRepository: subscriptionRepo,

		// Communication
		Notifier: notifier,

		// Cache
		CacheProvider: cacheProvider,

		// Metrics
		CacheMetrics:        collector,
		NotificationMetrics: collector,

		// Infrastructure
		ConfigProvider: infrastructure.NewConfigProviderAdapter(c.config),
		Logger:         logger,
		Database:       c.db,
	}

	slog.Info("Ports initialized successfully")
	return nil
}

func (c *DependencyContainer) ApplicationPorts() *ports.ApplicationPorts {
	return c.ports
}

func (c *DependencyContainer) Database() *gorm.DB {
	return c.db
}

// Breaker returns the provider circuit breaker for health reporting
func (c *DependencyContainer) Breaker() infrastructure.BreakerStateReporter {
	return c.breaker
}

// Cleanup releases the cache backend, database and log file
func (c *DependencyContainer) Cleanup() error {
	var firstErr error

	if c.ports != nil {
		if closer, ok := c.ports.CacheProvider.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				firstErr = fmt.Errorf("close cache provider: %w", err)
			}
		}
	}

	if err := database.Close(c.db); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close database: %w", err)
	}

	c.closeLogFile()
	return firstErr
}

func (c *DependencyContainer) closeLogFile() {
	if c.logFile != nil {
		_ = c.logFile.Close()
		c.logFile = nil
	}
}
