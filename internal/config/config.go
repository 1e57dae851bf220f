package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"weatherbot.app/pkg/errors"
)

const (
	maxRedisDB         = 15
	maxCacheTTLSeconds = 86400
	maxPortNumber      = 65535
	maxConcurrency     = 256
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `split_words:"true"`
	Database  DatabaseConfig  `split_words:"true"`
	Weather   WeatherConfig   `split_words:"true"`
	Telegram  TelegramConfig  `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	Scheduler SchedulerConfig `split_words:"true"`
	Log       LogConfig       `split_words:"true"`
}

type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

type DatabaseConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"postgres"`
	Host       string `envconfig:"DB_HOST" default:"localhost"`
	Port       int    `envconfig:"DB_PORT" default:"5432"`
	User       string `envconfig:"DB_USER" default:"postgres"`
	Password   string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name       string `envconfig:"DB_NAME" default:"weatherbot"`
	SSLMode    string `envconfig:"DB_SSL_MODE" default:"disable"`
	SQLitePath string `envconfig:"DB_SQLITE_PATH" default:"weatherbot.db"`
}

// GetDSN returns the connection string for the configured driver.
// SQLite connections always enable foreign keys so user deletion cascades.
func (c DatabaseConfig) GetDSN() string {
	if c.Driver == "sqlite" {
		separator := "?"
		if strings.Contains(c.SQLitePath, "?") {
			separator = "&"
		}
		return c.SQLitePath + separator + "_foreign_keys=on"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type WeatherConfig struct {
	OpenWeatherMapKey       string `envconfig:"OPENWEATHERMAP_API_KEY" required:"true"`
	DataBaseURL             string `envconfig:"OPENWEATHERMAP_API_BASE_URL" default:"https://api.openweathermap.org/data/2.5"`
	GeoBaseURL              string `envconfig:"OPENWEATHERMAP_GEO_BASE_URL" default:"https://api.openweathermap.org/geo/1.0"`
	RequestTimeoutSeconds   int    `envconfig:"WEATHER_REQUEST_TIMEOUT_SECONDS" default:"10"`
	BreakerFailureThreshold uint32 `envconfig:"WEATHER_BREAKER_FAILURE_THRESHOLD" default:"5"`
	BreakerOpenSeconds      int    `envconfig:"WEATHER_BREAKER_OPEN_SECONDS" default:"30"`
	EnableLogging           bool   `envconfig:"WEATHER_ENABLE_LOGGING" default:"true"`
}

type TelegramConfig struct {
	BotToken   string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	APIBaseURL string `envconfig:"TELEGRAM_API_BASE_URL" default:"https://api.telegram.org"`
}

// CacheType represents the type of cache to use
type CacheType int

const (
	CacheTypeUnknown CacheType = iota
	CacheTypeMemory
	CacheTypeRedis
)

// String returns the string representation of cache type
func (c CacheType) String() string {
	switch c {
	case CacheTypeMemory:
		return "memory"
	case CacheTypeRedis:
		return "redis"
	default:
		return "unknown"
	}
}

// IsValid checks if the cache type is valid
func (c CacheType) IsValid() bool {
	return c == CacheTypeMemory || c == CacheTypeRedis
}

// CacheTypeFromString converts string to CacheType enum
func CacheTypeFromString(s string) CacheType {
	switch s {
	case "memory":
		return CacheTypeMemory
	case "redis":
		return CacheTypeRedis
	default:
		return CacheTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (c *CacheType) UnmarshalText(text []byte) error {
	*c = CacheTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (c CacheType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type CacheConfig struct {
	Type                 CacheType   `envconfig:"CACHE_TYPE" default:"memory"`
	TTLSeconds           int         `envconfig:"CACHE_TTL_SECONDS" default:"300"`
	SweepIntervalMinutes int         `envconfig:"CACHE_SWEEP_INTERVAL_MINUTES" default:"15"`
	Redis                RedisConfig `split_words:"true"`
}

// TTL returns how long a fetched payload stays fresh
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

type SchedulerConfig struct {
	Enabled             bool   `envconfig:"SCHEDULER_ENABLED" default:"true"`
	CronSpec            string `envconfig:"SCHEDULER_CRON_SPEC" default:"* * * * *"`
	Timezone            string `envconfig:"SCHEDULER_TIMEZONE" default:"Local"`
	FetchTimeoutSeconds int    `envconfig:"SCHEDULER_FETCH_TIMEOUT_SECONDS" default:"10"`
	SendTimeoutSeconds  int    `envconfig:"SCHEDULER_SEND_TIMEOUT_SECONDS" default:"10"`
	MaxConcurrency      int    `envconfig:"SCHEDULER_MAX_CONCURRENCY" default:"16"`
	QueueSize           int    `envconfig:"SCHEDULER_QUEUE_SIZE" default:"16"`
}

// Location resolves the timezone ticks are evaluated in
func (s SchedulerConfig) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

func (s SchedulerConfig) FetchTimeout() time.Duration {
	return time.Duration(s.FetchTimeoutSeconds) * time.Second
}

func (s SchedulerConfig) SendTimeout() time.Duration {
	return time.Duration(s.SendTimeoutSeconds) * time.Second
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
	// FilePath additionally appends every entry to this file when set.
	FilePath string `envconfig:"LOG_FILE_PATH"`
}

func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Weather.Validate(); err != nil {
		return err
	}
	if err := c.Telegram.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > maxPortNumber {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "sqlite":
		if d.SQLitePath == "" {
			return errors.NewConfigurationError("DB_SQLITE_PATH cannot be empty when DB_DRIVER is sqlite", nil)
		}
		return nil
	case "postgres":
	default:
		return errors.NewConfigurationError("DB_DRIVER must be one of: postgres, sqlite", nil)
	}

	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > maxPortNumber {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	return d.ValidateSSLMode()
}

func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

func (w *WeatherConfig) Validate() error {
	if w.OpenWeatherMapKey == "" {
		return errors.NewConfigurationError("OPENWEATHERMAP_API_KEY cannot be empty", nil)
	}
	for name, url := range map[string]string{
		"OPENWEATHERMAP_API_BASE_URL": w.DataBaseURL,
		"OPENWEATHERMAP_GEO_BASE_URL": w.GeoBaseURL,
	} {
		if !isHTTPURL(url) {
			return errors.NewConfigurationError(name+" must start with http:// or https://", nil)
		}
	}
	if w.RequestTimeoutSeconds < 1 {
		return errors.NewConfigurationError("WEATHER_REQUEST_TIMEOUT_SECONDS must be at least 1 second", nil)
	}
	if w.BreakerFailureThreshold < 1 {
		return errors.NewConfigurationError("WEATHER_BREAKER_FAILURE_THRESHOLD must be at least 1", nil)
	}
	if w.BreakerOpenSeconds < 1 {
		return errors.NewConfigurationError("WEATHER_BREAKER_OPEN_SECONDS must be at least 1 second", nil)
	}
	return nil
}

func (t *TelegramConfig) Validate() error {
	if t.BotToken == "" {
		return errors.NewConfigurationError("TELEGRAM_BOT_TOKEN cannot be empty", nil)
	}
	if !isHTTPURL(t.APIBaseURL) {
		return errors.NewConfigurationError("TELEGRAM_API_BASE_URL must start with http:// or https://", nil)
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Type.IsValid() {
		return errors.NewConfigurationError("CACHE_TYPE must be one of: memory, redis", nil)
	}
	if c.TTLSeconds < 1 || c.TTLSeconds > maxCacheTTLSeconds {
		return errors.NewConfigurationError("CACHE_TTL_SECONDS must be between 1 and 86400 seconds", nil)
	}
	if c.SweepIntervalMinutes < 1 {
		return errors.NewConfigurationError("CACHE_SWEEP_INTERVAL_MINUTES must be at least 1 minute", nil)
	}

	if c.Type == CacheTypeRedis {
		return c.Redis.Validate()
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when using Redis cache", nil)
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return errors.NewConfigurationError("REDIS_DB must be between 0 and 15", nil)
	}
	if r.DialTimeout < 1 {
		return errors.NewConfigurationError("REDIS_DIAL_TIMEOUT must be at least 1 second", nil)
	}
	if r.ReadTimeout < 1 {
		return errors.NewConfigurationError("REDIS_READ_TIMEOUT must be at least 1 second", nil)
	}
	if r.WriteTimeout < 1 {
		return errors.NewConfigurationError("REDIS_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (s *SchedulerConfig) Validate() error {
	if _, err := cron.ParseStandard(s.CronSpec); err != nil {
		return errors.NewConfigurationError("SCHEDULER_CRON_SPEC is not a valid cron expression", err)
	}
	if _, err := s.Location(); err != nil {
		return errors.NewConfigurationError("SCHEDULER_TIMEZONE is not a known time zone", err)
	}
	if s.FetchTimeoutSeconds < 1 {
		return errors.NewConfigurationError("SCHEDULER_FETCH_TIMEOUT_SECONDS must be at least 1 second", nil)
	}
	if s.SendTimeoutSeconds < 1 {
		return errors.NewConfigurationError("SCHEDULER_SEND_TIMEOUT_SECONDS must be at least 1 second", nil)
	}
	if s.MaxConcurrency < 1 || s.MaxConcurrency > maxConcurrency {
		return errors.NewConfigurationError("SCHEDULER_MAX_CONCURRENCY must be between 1 and 256", nil)
	}
	if s.QueueSize < 1 {
		return errors.NewConfigurationError("SCHEDULER_QUEUE_SIZE must be at least 1", nil)
	}
	return nil
}

func (l *LogConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewConfigurationError("LOG_LEVEL must be one of: debug, info, warn, error", nil)
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		return errors.NewConfigurationError("LOG_FORMAT must be one of: text, json", nil)
	}
	return nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
