package di

import (
	"context"
	"fmt"
	"time"

	"numtree-backend/application/commands"
	"numtree-backend/application/commands/bus"
	commandhandlers "numtree-backend/application/commands/handlers"
	"numtree-backend/application/ports"
	"numtree-backend/application/queries"
	querybus "numtree-backend/application/queries/bus"
	queryhandlers "numtree-backend/application/queries/handlers"
	"numtree-backend/application/services"
	domainconfig "numtree-backend/domain/config"
	"numtree-backend/domain/core/validators"
	"numtree-backend/infrastructure/cache"
	"numtree-backend/infrastructure/config"
	"numtree-backend/infrastructure/messaging"
	"numtree-backend/infrastructure/messaging/eventbridge"
	"numtree-backend/infrastructure/persistence/dynamodb"
	"numtree-backend/infrastructure/persistence/sqlite"
	"numtree-backend/pkg/auth"
	pkgerrors "numtree-backend/pkg/errors"
	"numtree-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	jwtAudience      = "numtree-api"
	metricsNamespace = "numtree"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = level
	}

	return zcfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client, pointed at
// DynamoDBEndpoint when one is configured
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// Storage groups the repositories of the configured driver
type Storage struct {
	Users      ports.UserRepository
	Trees      ports.TreeRepository
	Operations ports.OperationRepository
	Health     ports.HealthChecker
}

// ProvideStorage opens the configured store. SQLite is migrated on open;
// DynamoDB tables are created by the migrate command.
func ProvideStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageDynamoDB:
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		store := dynamodb.NewStore(ProvideDynamoDBClient(awsCfg, cfg), cfg.DynamoDBTable, logger)
		return &Storage{
			Users:      dynamodb.NewUserRepository(store),
			Trees:      dynamodb.NewTreeRepository(store),
			Operations: dynamodb.NewOperationRepository(store),
			Health:     store,
		}, func() {}, nil

	default:
		db, err := OpenSQLite(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				logger.Warn("Failed to close database", zap.Error(err))
			}
		}
		return &Storage{
			Users:      sqlite.NewUserRepository(db, logger),
			Trees:      sqlite.NewTreeRepository(db, logger),
			Operations: sqlite.NewOperationRepository(db, logger),
			Health:     db,
		}, cleanup, nil
	}
}

// OpenSQLite opens the database and applies pending migrations
func OpenSQLite(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlite.DB, error) {
	db, err := sqlite.Open(cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}
	applied, err := db.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.DatabasePath, err)
	}
	if applied > 0 {
		logger.Info("Database migrated", zap.Int("applied", applied), zap.String("path", cfg.DatabasePath))
	}
	return db, nil
}

// ProvideUserRepository exposes the user repository of the storage
func ProvideUserRepository(s *Storage) ports.UserRepository { return s.Users }

// ProvideTreeRepository exposes the tree repository of the storage
func ProvideTreeRepository(s *Storage) ports.TreeRepository { return s.Trees }

// ProvideOperationRepository exposes the operation repository of the storage
func ProvideOperationRepository(s *Storage) ports.OperationRepository { return s.Operations }

// ProvideHealthChecker exposes the storage health check
func ProvideHealthChecker(s *Storage) ports.HealthChecker { return s.Health }

// ProvideRedisClient returns nil when Redis is not configured
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}
	client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	return client, func() { client.Close() }
}

// ProvideCache returns a Redis cache when a client exists, an in-memory
// cache otherwise, instrumented with hit/miss metrics
func ProvideCache(client *redis.Client, metrics *observability.Collector, logger *zap.Logger) (ports.Cache, func()) {
	if client != nil {
		return cache.NewInstrumentedCache(cache.NewRedisCache(client), metrics, logger), func() {}
	}
	mem := cache.NewInMemoryCache(time.Minute)
	return cache.NewInstrumentedCache(mem, metrics, logger), func() { mem.Close() }
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideEventPublisher publishes to EventBridge when events are enabled and
// to the log otherwise
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) (ports.EventPublisher, error) {
	var publisher ports.EventPublisher = messaging.NewLoggingPublisher(logger)
	if cfg.EnableEvents {
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		publisher = eventbridge.NewPublisher(
			ProvideEventBridgeClient(awsCfg),
			cfg.EventBusName,
			eventbridge.DefaultBreakerConfig(),
			logger,
		)
	}
	return messaging.NewInstrumentedPublisher(publisher, metrics), nil
}

// ProvideDomainConfig loads the domain rules for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	dc := domainconfig.LoadDomainConfig(cfg.Environment)
	if err := dc.Validate(); err != nil {
		return nil, err
	}
	return dc, nil
}

// ProvideValidator creates the domain validator
func ProvideValidator(dc *domainconfig.DomainConfig) *validators.Validator {
	return validators.NewValidator(dc)
}

func jwtConfig(cfg *config.Config) auth.JWTConfig {
	return auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.SigningSecret(),
		Issuer:        cfg.JWTIssuer,
		Audience:      []string{jwtAudience},
		ExpiryTime:    cfg.JWTExpiry,
	}
}

// ProvideJWTGenerator creates the token issuer
func ProvideJWTGenerator(cfg *config.Config) (*auth.JWTGenerator, error) {
	return auth.NewJWTGenerator(jwtConfig(cfg))
}

// ProvideJWTValidator creates the token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(jwtConfig(cfg))
}

// ProvideTokenIssuer binds the generator to the port
func ProvideTokenIssuer(g *auth.JWTGenerator) ports.TokenIssuer { return g }

// ProvidePasswordHasher creates the bcrypt hasher
func ProvidePasswordHasher(cfg *config.Config) ports.PasswordHasher {
	return auth.NewBcryptHasher(cfg.BcryptCost)
}

// ProvideRateLimiter returns a Redis-backed limiter when Redis is
// configured, an in-process one otherwise
func ProvideRateLimiter(cfg *config.Config, client *redis.Client) *auth.IPRateLimiter {
	if client != nil {
		return auth.NewDistributedIPRateLimiter(client, cfg.RateLimitPerMinute)
	}
	return auth.NewIPRateLimiter(cfg.RateLimitPerMinute)
}

// ProvideErrorHandler creates the HTTP error writer. Stack traces are only
// exposed in development.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideEventDispatcher creates the dispatcher used by command handlers
func ProvideEventDispatcher(publisher ports.EventPublisher, logger *zap.Logger) *services.EventDispatcher {
	return services.NewEventDispatcher(publisher, logger)
}

// ProvideLeftOperandResolver creates the resolver used by AddOperation
func ProvideLeftOperandResolver(trees ports.TreeRepository, ops ports.OperationRepository, logger *zap.Logger) *services.LeftOperandResolver {
	return services.NewLeftOperandResolver(trees, ops, logger)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	users ports.UserRepository,
	trees ports.TreeRepository,
	ops ports.OperationRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	resolver *services.LeftOperandResolver,
	dispatcher *services.EventDispatcher,
	cacheStore ports.Cache,
	validator *validators.Validator,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics.RecordCommand),
	)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.SignUpCommand{}, bus.Typed(commandhandlers.NewSignUpHandler(users, hasher, tokens, validator, logger).Handle)},
		{commands.LoginCommand{}, bus.Typed(commandhandlers.NewLoginHandler(users, hasher, tokens, logger).Handle)},
		{commands.RegisterUserCommand{}, bus.Typed(commandhandlers.NewRegisterUserHandler(users, tokens, logger).Handle)},
		{commands.CreateTreeCommand{}, bus.Typed(commandhandlers.NewCreateTreeHandler(trees, cacheStore, dispatcher, validator, logger).Handle)},
		{commands.AddOperationCommand{}, bus.Typed(commandhandlers.NewAddOperationHandler(ops, resolver, cacheStore, dispatcher, validator, logger).Handle)},
	}
	for _, r := range registrations {
		if err := commandBus.Register(r.cmd, r.handler); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	cfg *config.Config,
	users ports.UserRepository,
	trees ports.TreeRepository,
	cacheStore ports.Cache,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus().WithObserver(metrics.RecordQuery)

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetTreeQuery{}, querybus.Typed(queryhandlers.NewGetTreeHandler(trees, cacheStore, cfg.CacheTTL, logger).Handle)},
		{queries.ListTreesQuery{}, querybus.Typed(queryhandlers.NewListTreesHandler(trees, cacheStore, cfg.CacheTTL, logger).Handle)},
		{queries.GetCurrentUserQuery{}, querybus.Typed(queryhandlers.NewGetCurrentUserHandler(users, logger).Handle)},
	}
	for _, r := range registrations {
		if err := queryBus.Register(r.query, r.handler); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}
