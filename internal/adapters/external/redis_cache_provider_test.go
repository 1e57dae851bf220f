package external

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/config"
	"weatherbot.app/pkg/errors"
)

func setupMockRedis(t *testing.T) (*miniredis.Miniredis, *RedisCacheProviderAdapter) {
	t.Helper()

	mockRedis := miniredis.RunT(t)
	adapter, err := NewRedisCacheProviderAdapter(&config.RedisConfig{
		Addr:         mockRedis.Addr(),
		DialTimeout:  5,
		ReadTimeout:  3,
		WriteTimeout: 3,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })

	return mockRedis, adapter
}

func TestNewRedisCacheProviderAdapter_Errors(t *testing.T) {
	_, err := NewRedisCacheProviderAdapter(nil)
	assert.True(t, errors.IsConfigurationError(err))

	_, err = NewRedisCacheProviderAdapter(&config.RedisConfig{
		Addr:         "invalid:address:port",
		DialTimeout:  1,
		ReadTimeout:  1,
		WriteTimeout: 1,
	})
	assert.True(t, errors.IsExternalAPIError(err))
}

func TestRedisCacheProviderAdapter_Operations(t *testing.T) {
	_, adapter := setupMockRedis(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "weather:current:kyiv", []byte(`{"name":"Kyiv"}`), time.Minute))

	value, err := adapter.Get(ctx, "weather:current:kyiv")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"name":"Kyiv"}`), value)

	exists, err := adapter.Exists(ctx, "weather:current:kyiv")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, adapter.Delete(ctx, "weather:current:kyiv"))

	_, err = adapter.Get(ctx, "weather:current:kyiv")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRedisCacheProviderAdapter_TTLExpiration(t *testing.T) {
	mockRedis, adapter := setupMockRedis(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "weather:forecast:lviv", []byte("{}"), 300*time.Second))

	mockRedis.FastForward(299 * time.Second)
	_, err := adapter.Get(ctx, "weather:forecast:lviv")
	require.NoError(t, err)

	mockRedis.FastForward(2 * time.Second)
	_, err = adapter.Get(ctx, "weather:forecast:lviv")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRedisCacheProviderAdapter_ClearOnlyWeatherKeys(t *testing.T) {
	mockRedis, adapter := setupMockRedis(t)
	ctx := context.Background()

	require.NoError(t, mockRedis.Set("session:1", "keep"))
	require.NoError(t, adapter.Set(ctx, "weather:current:kyiv", []byte("{}"), time.Minute))
	require.NoError(t, adapter.Set(ctx, "weather:air:50.4500,30.5200", []byte("{}"), time.Minute))

	require.NoError(t, adapter.Clear(ctx))

	assert.True(t, mockRedis.Exists("session:1"))
	assert.False(t, mockRedis.Exists("weather:current:kyiv"))
	assert.False(t, mockRedis.Exists("weather:air:50.4500,30.5200"))
}

func TestRedisCacheProviderAdapter_ClearSpanningSeveralBatches(t *testing.T) {
	mockRedis, adapter := setupMockRedis(t)
	ctx := context.Background()

	for i := 0; i < 2*clearBatchSize+7; i++ {
		require.NoError(t, mockRedis.Set(fmt.Sprintf("weather:current:city-%d", i), "{}"))
	}

	require.NoError(t, mockRedis.Set("session:1", "keep"))

	require.NoError(t, adapter.Clear(ctx))
	assert.Equal(t, []string{"session:1"}, mockRedis.Keys())
}

func TestRedisCacheProviderAdapter_ValidationErrors(t *testing.T) {
	_, adapter := setupMockRedis(t)
	ctx := context.Background()

	_, err := adapter.Get(ctx, "")
	assert.True(t, errors.IsValidationError(err))
	assert.True(t, errors.IsValidationError(adapter.Set(ctx, "", []byte("v"), time.Minute)))
	assert.True(t, errors.IsValidationError(adapter.Set(ctx, "k", nil, time.Minute)))
	assert.True(t, errors.IsValidationError(adapter.Set(ctx, "k", []byte("v"), 0)))
	assert.True(t, errors.IsValidationError(adapter.Delete(ctx, "")))
}

func TestRedisCacheProviderAdapter_Ping(t *testing.T) {
	mockRedis, adapter := setupMockRedis(t)

	assert.NoError(t, adapter.Ping(context.Background()))

	mockRedis.Close()
	assert.True(t, errors.IsExternalAPIError(adapter.Ping(context.Background())))
}
