// Package petfood wires the catalog and cart services together from
// configuration: AWS clients, repositories, event publishing, and the
// parameter cache.
package petfood

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/petstorecloud/petfood/config"
	"github.com/petstorecloud/petfood/pkg/logging"
	"github.com/petstorecloud/petfood/repository"
	"github.com/petstorecloud/petfood/services"
)

// App bundles the assembled services and their dependencies.
type App struct {
	Config *config.Config
	Logger logging.Logger

	Foods *services.FoodService
	Carts *services.CartService

	FoodRepo repository.FoodRepository
	CartRepo repository.CartRepository
	Params   config.ParameterCache

	dynamo  *dynamodb.Client
	closers []func() error
}

// New builds the application from the given config, connecting to
// DynamoDB, EventBridge and the parameter store in the configured
// region. The parameter cache runs on Redis when a URL is configured
// and in process memory otherwise.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewLogrusLogger(cfg.LogLevel)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	busClient := eventbridge.NewFromConfig(awsCfg)
	ssmClient := ssm.NewFromConfig(awsCfg)

	app := &App{Config: cfg, Logger: logger, dynamo: dynamoClient}

	source := config.NewSSMParameterSource(ssmClient)
	var params config.ParameterCache
	if cfg.Cache.RedisURL != "" {
		redisCache, err := config.NewRedisParameterCache(cfg.Cache.RedisURL, source, cfg.Cache.TTL, logger)
		if err != nil {
			return nil, fmt.Errorf("building parameter cache: %w", err)
		}
		app.closers = append(app.closers, redisCache.Close)
		params = redisCache
	} else {
		params = config.NewMemoryParameterCache(source, cfg.Cache.TTL, logger)
	}
	app.Params = params

	emitter, err := services.NewEventEmitter(busClient, cfg.Events, logger)
	if err != nil {
		return nil, err
	}

	foodRepo := repository.NewDynamoFoodRepository(dynamoClient, cfg.FoodsTable, logger)
	cartRepo := repository.NewDynamoCartRepository(dynamoClient, cfg.CartsTable, logger)
	app.FoodRepo = foodRepo
	app.CartRepo = cartRepo

	cdn := config.NewCDNResolver(params, cfg.CDNParameterName)

	app.Foods = services.NewFoodService(foodRepo, emitter, cdn, logger)
	app.Carts = services.NewCartService(cartRepo, foodRepo, cdn, logger)

	logger.Info("Application wired", map[string]interface{}{
		"region":      cfg.Region,
		"foods_table": cfg.FoodsTable,
		"carts_table": cfg.CartsTable,
		"events":      cfg.Events.Enabled,
	})

	return app, nil
}

// EnsureTables creates the DynamoDB tables when they are missing.
// Intended for development and test environments; production tables
// are provisioned out of band.
func (a *App) EnsureTables(ctx context.Context) error {
	manager := repository.NewTableManager(a.dynamo, a.Logger)
	return manager.EnsureTables(ctx, a.Config.FoodsTable, a.Config.CartsTable)
}

// Close releases held connections.
func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
