package external

import (
	"weatherbot.app/internal/config"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// CacheProviderFactory builds the byte store behind the weather cache from CACHE_TYPE.
type CacheProviderFactory struct {
	memoryOptions []MemoryCacheOption
}

// NewCacheProviderFactory accepts options applied when the memory backend is selected.
func NewCacheProviderFactory(memoryOptions ...MemoryCacheOption) *CacheProviderFactory {
	return &CacheProviderFactory{memoryOptions: memoryOptions}
}

func (f *CacheProviderFactory) CreateCacheProvider(cfg *config.CacheConfig) (ports.CacheProvider, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("cache config cannot be nil", nil)
	}

	switch cfg.Type {
	case config.CacheTypeMemory:
		return NewMemoryCacheProvider(f.memoryOptions...), nil
	case config.CacheTypeRedis:
		provider, err := NewRedisCacheProviderAdapter(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
	return nil, errors.NewConfigurationError("unsupported cache type: "+cfg.Type.String(), nil)
}
