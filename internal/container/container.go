package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/audit"
	"github.com/trimly/trimly/internal/auth"
	"github.com/trimly/trimly/internal/handlers"
	"github.com/trimly/trimly/internal/health"
	"github.com/trimly/trimly/internal/ledger"
	"github.com/trimly/trimly/internal/messaging"
	"github.com/trimly/trimly/internal/middleware"
	"github.com/trimly/trimly/internal/migrations"
	"github.com/trimly/trimly/internal/moderation"
	"github.com/trimly/trimly/internal/ratelimit"
	"github.com/trimly/trimly/internal/registry"
	"github.com/trimly/trimly/internal/stats"
	"github.com/trimly/trimly/internal/store"
)

// Options holds the runtime configuration, parsed by humacli from flags and
// environment variables.
type Options struct {
	Port            int           `default:"8888"                                  help:"Port to listen on"                    short:"p"`
	BaseURL         string        `default:""                                      help:"Public base URL for short links"`
	DatabaseURL     string        `default:"postgres://localhost:5432/trimly"      help:"Postgres connection URL"              short:"d"`
	RedisAddr       string        `default:"localhost:6379"                        help:"Redis server address"                 short:"r"`
	CodeLength      int           `default:"8"                                     help:"Length of generated short codes"      short:"c"`
	TokenSecret     string        `default:"development-secret"                    help:"HMAC secret for signing tokens"`
	AccessTokenTTL  time.Duration `default:"15m"                                   help:"Access token lifetime"`
	RefreshTokenTTL time.Duration `default:"168h"                                  help:"Refresh token lifetime"`
	CacheTTL        time.Duration `default:"5m"                                    help:"Entry cache lifetime"`
	LogFormat       string        `default:"console"                               help:"Log format (console or json)"`
}

func (o *Options) baseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: options.RedisAddr}), nil
	})
}

// PostgresPackage provides the pgx connection pool. Schema migrations run
// before the pool is handed out.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if err := migrations.Run(options.DatabaseURL, logger); err != nil {
			return nil, err
		}

		return pgxpool.New(context.Background(), options.DatabaseURL)
	})
}

// RepositoryPackage provides the storage layer. Entry lookups go through the
// Redis cache decorator; everything else talks to Postgres directly.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*store.AccountStore, error) {
		return store.NewAccountStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (accounts.Repository, error) {
		return do.MustInvoke[*store.AccountStore](i), nil
	})

	do.Provide(injector, func(i *do.Injector) (moderation.Store, error) {
		return do.MustInvoke[*store.AccountStore](i), nil
	})

	do.Provide(injector, func(i *do.Injector) (registry.Repository, error) {
		options := do.MustInvoke[*Options](i)
		pool := do.MustInvoke[*pgxpool.Pool](i)
		client := do.MustInvoke[*redis.Client](i)

		return store.NewCachedEntryStore(store.NewEntryStore(pool), client, options.CacheTTL), nil
	})

	do.Provide(injector, func(i *do.Injector) (ledger.Repository, error) {
		return store.NewVisitStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (audit.Repository, error) {
		return store.NewAuditStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (stats.Repository, error) {
		return store.NewStatsStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})
}

// ServicePackage provides the domain services.
func ServicePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*auth.Authority, error) {
		options := do.MustInvoke[*Options](i)

		return auth.NewAuthority(options.TokenSecret, options.AccessTokenTTL, options.RefreshTokenTTL), nil
	})

	do.Provide(injector, func(i *do.Injector) (*audit.Log, error) {
		return audit.NewLog(
			do.MustInvoke[audit.Repository](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*registry.Service, error) {
		options := do.MustInvoke[*Options](i)

		generator, err := nanoid.Standard(options.CodeLength)
		if err != nil {
			return nil, err
		}

		return registry.NewService(do.MustInvoke[registry.Repository](i), generator), nil
	})

	do.Provide(injector, func(i *do.Injector) (*accounts.Service, error) {
		return accounts.NewService(
			do.MustInvoke[accounts.Repository](i),
			do.MustInvoke[*auth.Authority](i),
			do.MustInvoke[*audit.Log](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*stats.Engine, error) {
		return stats.NewEngine(do.MustInvoke[stats.Repository](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*moderation.Service, error) {
		return moderation.NewService(
			do.MustInvoke[moderation.Store](i),
			do.MustInvoke[registry.Repository](i),
			do.MustInvoke[*audit.Log](i),
		), nil
	})
}

// RateLimitPackage provides the policy limiter backed by Redis.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		client := do.MustInvoke[*redis.Client](i)

		return ratelimit.NewPolicyLimiter(store.NewRateLimitRedisStore(client), ratelimit.DefaultPolicy()), nil
	})
}

// PublisherGroupPackage provides the visit-event publisher over Redis streams.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[ledger.EntryVisitedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[ledger.EntryVisitedEvent](group.Publisher(), ledger.TopicEntryVisited), nil
	})
}

// ConsumerGroupPackage provides the consumer group that persists visit
// events. Used by the consumer binary.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*redis.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: "visit-ledger",
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(ledger.NewConsumer(subscriber, do.MustInvoke[ledger.Repository](i), logger))

		return group, nil
	})
}

// HTTPPackage provides the chi router and the huma API with all middleware
// and routes attached.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("Trimly", "1.0.0"))

		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.Authenticate(api,
			do.MustInvoke[*auth.Authority](i),
			do.MustInvoke[accounts.Repository](i),
			logger,
		))
		api.UseMiddleware(middleware.PolicyRateLimiter(api,
			do.MustInvoke[*ratelimit.PolicyLimiter](i),
			ratelimit.NewOperationScopeResolver(),
			logger,
		))

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*registry.Service](i),
			do.MustInvoke[*stats.Engine](i),
			do.MustInvoke[*audit.Log](i),
			do.MustInvoke[messaging.Publish[ledger.EntryVisitedEvent]](i),
			options.baseURL(),
			logger,
		)
		authHandler := handlers.NewAuthHandler(do.MustInvoke[*accounts.Service](i))
		userHandler := handlers.NewUserHandler(do.MustInvoke[*accounts.Service](i))
		adminHandler := handlers.NewAdminHandler(
			do.MustInvoke[*moderation.Service](i),
			do.MustInvoke[*stats.Engine](i),
			do.MustInvoke[*audit.Log](i),
		)

		handlers.RegisterRoutes(api, urlHandler, authHandler, userHandler)
		handlers.RegisterAdminRoutes(api, adminHandler)

		healthHandler := health.NewHandler(
			health.NewPostgresChecker(do.MustInvoke[*pgxpool.Pool](i)),
			health.NewRedisChecker(do.MustInvoke[*redis.Client](i)),
		)
		health.RegisterRoutes(api, healthHandler)

		return api, nil
	})
}
