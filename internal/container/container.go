package container

import (
	"context"

	"civdraft/internal/config"
	"civdraft/internal/engine"
	"civdraft/internal/notify"
	"civdraft/internal/repository"
	"civdraft/internal/service"
	"civdraft/pkg/database"
	"civdraft/pkg/logger"
	"civdraft/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	Database     *database.PostgresDB
	RedisClient  *redis.Client
	SessionStore repository.SessionStore
	Engine       *engine.Engine
	Notifier     notify.Notifier
	DraftService *service.DraftService
}

// New creates a new dependency injection container. Postgres is optional:
// without DATABASE_URL the sessions live in memory. Redis is optional too;
// without it there is no cache layer and events only reach the log.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	var db *database.PostgresDB
	var store repository.SessionStore
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = repository.NewPostgresStore(db)
		log.Info("Postgres session store initialized")
	} else {
		store = repository.NewMemoryStore()
		log.Warn("DATABASE_URL not configured, sessions are held in memory only")
	}

	var redisClient *redis.Client
	notifiers := notify.Fanout{notify.NewLogNotifier(log.Logger)}
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			store = repository.NewCachedStore(store, redisClient, log.Logger)
			notifiers = append(notifiers, notify.NewRedisNotifier(redisClient, log.Logger))
			log.Info("Redis cache and event channel initialized")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	eng, err := engine.NewSeeded()
	if err != nil {
		return nil, err
	}

	drafts := service.NewDraftService(store, eng, notifiers, log.Logger)

	return &Container{
		Config:       cfg,
		Logger:       log,
		Database:     db,
		RedisClient:  redisClient,
		SessionStore: store,
		Engine:       eng,
		Notifier:     notifiers,
		DraftService: drafts,
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetDatabase returns the Postgres pool (may be nil for in-memory mode)
func (c *Container) GetDatabase() *database.PostgresDB {
	return c.Database
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// GetDraftService returns the draft service
func (c *Container) GetDraftService() *service.DraftService {
	return c.DraftService
}

// Close releases the container's connections.
func (c *Container) Close() error {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			return err
		}
	}
	if c.Database != nil {
		c.Database.Close()
	}
	return nil
}
