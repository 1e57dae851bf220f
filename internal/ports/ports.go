// Package ports defines the interfaces for external dependencies in our hexagonal architecture.
// These interfaces are implemented by adapters and replaced by test doubles in unit tests.
package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Weather
	WeatherProvider WeatherProvider

	// Subscription
	SubscriptionRepository SubscriptionRepository

	// Communication
	Notifier Notifier

	// Cache
	CacheProvider CacheProvider

	// Metrics
	CacheMetrics        CacheMetrics
	NotificationMetrics NotificationMetrics

	// Infrastructure
	ConfigProvider ConfigProvider
	Logger         Logger
	Database       interface{}
}
