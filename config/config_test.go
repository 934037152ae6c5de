package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petstorecloud/petfood/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "PetFoods", cfg.FoodsTable)
	assert.Equal(t, "PetFoodCarts", cfg.CartsTable)
	assert.Equal(t, "us-west-2", cfg.Region)
	assert.Equal(t, "/petstore/imagescdnurl", cfg.CDNParameterName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "default", cfg.Events.BusName)
	assert.Equal(t, 3, cfg.Events.MaxRetries)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PETFOOD_FOODS_TABLE", "StagingFoods")
	t.Setenv("PETFOOD_AWS_REGION", "eu-west-1")
	t.Setenv("PETFOOD_EVENTS_MAX_RETRIES", "5")
	t.Setenv("PETFOOD_EVENTS_ENABLED", "false")
	t.Setenv("PETFOOD_EVENTS_TIMEOUT", "10s")
	t.Setenv("PETFOOD_CACHE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "StagingFoods", cfg.FoodsTable)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 5, cfg.Events.MaxRetries)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Events.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("PETFOOD_EVENTS_MAX_RETRIES", "lots")
	t.Setenv("PETFOOD_CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Events.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoadOptionsWinOverEnv(t *testing.T) {
	t.Setenv("PETFOOD_FOODS_TABLE", "EnvFoods")

	cfg, err := Load(
		WithTables("OptFoods", "OptCarts"),
		WithRegion("ap-southeast-2"),
		WithLogLevel("debug"),
	)
	require.NoError(t, err)

	assert.Equal(t, "OptFoods", cfg.FoodsTable)
	assert.Equal(t, "OptCarts", cfg.CartsTable)
	assert.Equal(t, "ap-southeast-2", cfg.Region)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(WithTables("", "Carts"))
	assert.Error(t, err)

	events := models.DefaultEventConfig()
	events.MaxRetries = -1
	_, err = Load(WithEvents(events))
	assert.Error(t, err)
}
