package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/catalog-backoffice/product-api/docs"
	"github.com/catalog-backoffice/product-api/internal/api"
	"github.com/catalog-backoffice/product-api/internal/api/handler"
	"github.com/catalog-backoffice/product-api/internal/api/metrics"
	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
	"github.com/catalog-backoffice/product-api/internal/core/service"
	"github.com/catalog-backoffice/product-api/internal/infrastructure/config"
	mongodb "github.com/catalog-backoffice/product-api/internal/infrastructure/db/mongo"
	redisdb "github.com/catalog-backoffice/product-api/internal/infrastructure/db/redis"
	"github.com/catalog-backoffice/product-api/internal/infrastructure/memory"
	"github.com/catalog-backoffice/product-api/internal/infrastructure/queue"
	"github.com/catalog-backoffice/product-api/internal/infrastructure/token"
	"github.com/catalog-backoffice/product-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// credentialBackend is what the auth, role and bootstrap flows need from storage.
type credentialBackend interface {
	ports.CredentialStore
	ports.RoleProvisioner
}

// @title                       Product Catalog API
// @version                     1.0
// @description                 Back-office product catalog with JWT authentication and role-gated management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
func main() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Pretty: true})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "product-api",
	})

	health := map[string]handler.Pinger{}

	var (
		credentials credentialBackend
		products    ports.ProductRepository
	)
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:                    cfg.Mongo.URI,
			Database:               cfg.Mongo.Database,
			AppName:                cfg.Mongo.AppName,
			MaxPoolSize:            cfg.Mongo.MaxPoolSize,
			ServerSelectionTimeout: cfg.Mongo.ServerSelectionTimeout,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongo")
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("mongo disconnect failed")
			}
		}()

		credStore := mongodb.NewCredentialStore(db)
		productRepo := mongodb.NewProductRepository(db)
		if err := credStore.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create credential indexes")
		}
		if err := productRepo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create product indexes")
		}
		credentials, products = credStore, productRepo
		health["mongo"] = mongodb.Pinger(client)
		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongo store")
	default:
		store := memory.NewCredentialStore()
		credentials, products = store, memory.NewProductRepository()
		log.Warn().Msg("using in-memory store, data is lost on restart")
	}

	var (
		locker    ports.Locker                = memory.NewLocker()
		publisher ports.ProductEventPublisher = queue.NewLogPublisher(log)
	)
	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("redis close failed")
			}
		}()

		locker = redisdb.NewLocker(rdb)
		products = redisdb.NewCachingProductRepository(rdb, cfg.Catalog.CacheTTL, products)
		publisher = redisdb.NewEventPublisher(rdb)
		health["redis"] = redisdb.Pinger(rdb)
	}

	issuer, err := token.NewIssuer(token.Config{
		SigningKey: cfg.JWT.SigningKey,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		TTL:        cfg.JWT.TTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build token issuer")
	}

	if err := service.Bootstrap(ctx, credentials, credentials, service.AdminSeed{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}, log); err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}

	dispatcher := queue.NewDispatcher(cfg.Catalog.EventWorkers, publisher, log.With().Str("component", "dispatcher").Logger())
	dispatcher.OnDrop(func(domain.ProductEvent) { metrics.ProductEventsDroppedTotal.Inc() })
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Dependencies{
		AuthService:       service.NewAuthService(credentials, issuer, log),
		RoleService:       service.NewRoleService(credentials, locker, log),
		ProductService:    service.NewProductService(products, dispatcher, log),
		TokenParser:       issuer,
		HealthChecks:      health,
		LoginRateRequests: cfg.RateLimit.LoginRequests,
		LoginRateInterval: cfg.RateLimit.LoginInterval,
		MetricsRegisterer: prometheus.DefaultRegisterer,
		Logger:            log,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdown(e.Shutdown, stop, dispatcher, log)
}

// shutdown drains HTTP first so no new events are enqueued, then stops the
// event workers.
func shutdown(stopHTTP func(context.Context) error, stopWorkers context.CancelFunc, d *queue.Dispatcher, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := stopHTTP(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	stopWorkers()
	d.Wait()
	log.Info().Msg("server stopped")
}
