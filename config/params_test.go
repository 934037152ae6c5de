package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource counts fetches and can be made to fail.
type fakeSource struct {
	values map[string]string
	calls  int
	err    error
}

func (f *fakeSource) GetParameter(ctx context.Context, name string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	value, ok := f.values[name]
	if !ok {
		return "", errors.New("parameter not found: " + name)
	}
	return value, nil
}

func TestMemoryParameterCacheServesFromCache(t *testing.T) {
	source := &fakeSource{values: map[string]string{
		"/petstore/imagescdnurl": "https://cdn.example.com",
	}}
	cache := NewMemoryParameterCache(source, 5*time.Minute, nil)
	ctx := context.Background()

	value, err := cache.Get(ctx, "/petstore/imagescdnurl")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com", value)
	assert.Equal(t, 1, source.calls)

	// Second read comes from the cache.
	_, err = cache.Get(ctx, "/petstore/imagescdnurl")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}

func TestMemoryParameterCacheExpiry(t *testing.T) {
	source := &fakeSource{values: map[string]string{"p": "v1"}}
	cache := NewMemoryParameterCache(source, time.Minute, nil)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.SetClock(func() time.Time { return now })

	_, err := cache.Get(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	// Still fresh just before the TTL.
	now = now.Add(59 * time.Second)
	_, err = cache.Get(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	// Expired entry refetches.
	source.values["p"] = "v2"
	now = now.Add(2 * time.Second)
	value, err := cache.Get(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)
	assert.Equal(t, 2, source.calls)
}

func TestMemoryParameterCacheSourceFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("store unavailable")}
	cache := NewMemoryParameterCache(source, time.Minute, nil)

	_, err := cache.Get(context.Background(), "p")
	assert.ErrorContains(t, err, "store unavailable")

	assert.Equal(t, "fallback", cache.GetWithDefault(context.Background(), "p", "fallback"))
}

func TestCDNResolver(t *testing.T) {
	source := &fakeSource{values: map[string]string{
		"/petstore/imagescdnurl": "https://cdn.example.com",
	}}
	cache := NewMemoryParameterCache(source, time.Minute, nil)
	resolver := NewCDNResolver(cache, "/petstore/imagescdnurl")

	url, err := resolver.CDNBaseURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com", url)
}
