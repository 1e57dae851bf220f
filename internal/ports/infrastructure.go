package ports

import "time"

// CacheConfig represents the external data cache configuration
type CacheConfig struct {
	Type          string
	TTL           time.Duration
	SweepInterval int
}

// SchedulerConfig represents notification scheduler configuration
type SchedulerConfig struct {
	FetchTimeout   time.Duration
	SendTimeout    time.Duration
	MaxConcurrency int
}

// ConfigProvider defines the contract for configuration management
type ConfigProvider interface {
	GetCacheConfig() CacheConfig
	GetSchedulerConfig() SchedulerConfig
}

// Logger defines the contract for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a log field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
