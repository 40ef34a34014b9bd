package container

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/analytics"
	analyticsstore "github.com/serroba/url-shortener/internal/analytics/store"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"go.uber.org/zap"
)

// Storage backends selectable with Options.Storage.
const (
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// ConsumerGroupName is the redis stream consumer group used by analytics consumers.
const ConsumerGroupName = "analytics"

type Options struct {
	Port        int    `default:"8888"           help:"Port to listen on"               short:"p"`
	CodeLength  int    `default:"21"             help:"Length of generated short codes" short:"c"`
	Storage     string `default:"file"           help:"Storage backend (file, redis, postgres, memory)" short:"s"`
	FilePath    string `default:"db.txt"         help:"Path of the file log"`
	FileSync    bool   `default:"false"          help:"Fsync the file log after every save"`
	RedisAddr   string `default:"localhost:6379" help:"Redis server address"            short:"r"`
	RedisPrefix string `default:"url:"           help:"Key prefix for short URLs in Redis"`
	DatabaseURL string `default:"postgres://localhost:5432/shortener?sslmode=disable" help:"PostgreSQL connection string"`
	LogFormat   string `default:"console"        help:"Log output format (console, json)"`
	Analytics   bool   `default:"false"          help:"Publish analytics events to Redis streams"`

	AnalyticsStore string `default:"redis" help:"Where consumed analytics events go (redis, log)"`
}

// Storage is the repository selected by Options.Storage.
type Storage struct {
	Backend string
	Store   Backend
}

// Backend is a repository that can report its own health.
type Backend interface {
	shortener.Repository
	health.Checker
}

// RedisClient owns the shared Redis connection so the injector can close it.
type RedisClient struct {
	*redis.Client
}

func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// LoggerPackage provides the application logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		options := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: options.RedisAddr})}, nil
	})
}

// PostgresPackage provides a migrated PostgreSQL store.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.PostgresStore, error) {
		options := do.MustInvoke[*Options](i)
		ctx := context.Background()

		pool, err := pgxpool.New(ctx, options.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		pgStore := store.NewPostgresStore(pool)
		if err = pgStore.Migrate(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("migrate postgres: %w", err)
		}

		return pgStore, nil
	})
}

// RepositoryPackage provides every storage backend lazily and the one selected by Options.Storage.
// Only the selected backend is ever constructed.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.FileStore, error) {
		options := do.MustInvoke[*Options](i)

		var opts []store.FileOption
		if options.FileSync {
			opts = append(opts, store.WithFileSync())
		}

		return store.OpenFileStore(options.FilePath, opts...)
	})

	do.Provide(i, func(i *do.Injector) (*store.RedisStore, error) {
		options := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*RedisClient](i)

		return store.NewRedisStore(client.Client, options.RedisPrefix), nil
	})

	do.Provide(i, func(_ *do.Injector) (*store.MemoryStore, error) {
		return store.NewMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (*Storage, error) {
		options := do.MustInvoke[*Options](i)

		name := options.Storage
		if name == "" {
			name = StorageFile
		}

		backend, err := selectBackend(i, name)
		if err != nil {
			return nil, err
		}

		return &Storage{Backend: name, Store: backend}, nil
	})

	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		return do.MustInvoke[*Storage](i).Store, nil
	})
}

func selectBackend(i *do.Injector, name string) (Backend, error) {
	switch name {
	case StorageFile:
		return invokeBackend[*store.FileStore](i)
	case StorageRedis:
		return invokeBackend[*store.RedisStore](i)
	case StoragePostgres:
		return invokeBackend[*store.PostgresStore](i)
	case StorageMemory:
		return invokeBackend[*store.MemoryStore](i)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", name)
	}
}

func invokeBackend[T Backend](i *do.Injector) (Backend, error) {
	backend, err := do.Invoke[T](i)
	if err != nil {
		return nil, err
	}

	return backend, nil
}

// AnalyticsPackage provides the Redis analytics store shared by the consumer and the stats route.
func AnalyticsPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*analyticsstore.Redis, error) {
		client := do.MustInvoke[*RedisClient](i)

		return analyticsstore.NewRedis(client.Client, analyticsstore.DefaultRedisPrefix), nil
	})
}

// PublisherGroupPackage provides the analytics publish functions.
// They publish to Redis streams when analytics is enabled and discard events otherwise.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client.Client},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[analytics.URLCreatedEvent], error) {
		if !do.MustInvoke[*Options](i).Analytics {
			return messaging.NoopPublish[analytics.URLCreatedEvent](), nil
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.URLCreatedEvent](group.Publisher(), analytics.TopicURLCreated), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[analytics.URLAccessedEvent], error) {
		if !do.MustInvoke[*Options](i).Analytics {
			return messaging.NoopPublish[analytics.URLAccessedEvent](), nil
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.URLAccessedEvent](group.Publisher(), analytics.TopicURLAccessed), nil
	})
}

// HTTPPackage provides the router and the huma API with all routes registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		options := do.MustInvoke[*Options](i)
		repo := do.MustInvoke[shortener.Repository](i)

		codeGenerator, err := nanoid.Standard(options.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("create code generator: %w", err)
		}

		return shortener.NewService(repo, shortener.NewFactory(codeGenerator, nil)), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		storage := do.MustInvoke[*Storage](i)

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Service](i),
			fmt.Sprintf("http://localhost:%d", options.Port),
			do.MustInvoke[messaging.Publish[analytics.URLCreatedEvent]](i),
			do.MustInvoke[messaging.Publish[analytics.URLAccessedEvent]](i),
			logger,
		)

		handlers.RegisterRoutes(api, urlHandler)
		health.RegisterRoutes(api, health.NewHandler(storage.Store, storage.Backend, logger))

		if options.Analytics {
			statsHandler := handlers.NewStatsHandler(do.MustInvoke[*analyticsstore.Redis](i), logger)
			handlers.RegisterStatsRoutes(api, statsHandler)
		}

		return api, nil
	})
}

// ConsumerGroupPackage provides the analytics consumer group reading from Redis streams.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (analytics.Store, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		switch options.AnalyticsStore {
		case "log":
			return analyticsstore.NewNoop(logger), nil
		case "redis", "":
			return do.MustInvoke[*analyticsstore.Redis](i), nil
		default:
			return nil, fmt.Errorf("unknown analytics store %q", options.AnalyticsStore)
		}
	})

	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        client.Client,
				ConsumerGroup: ConsumerGroupName,
			},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(analytics.NewConsumers(subscriber, do.MustInvoke[analytics.Store](i), logger)...)

		return group, nil
	})
}
