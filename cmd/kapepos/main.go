package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ShiLuis/KapePOS/internal/cache"
	"github.com/ShiLuis/KapePOS/internal/catalog"
	"github.com/ShiLuis/KapePOS/internal/checkout"
	"github.com/ShiLuis/KapePOS/internal/config"
	"github.com/ShiLuis/KapePOS/internal/consumer"
	"github.com/ShiLuis/KapePOS/internal/domain"
	h "github.com/ShiLuis/KapePOS/internal/http"
	"github.com/ShiLuis/KapePOS/internal/publisher"
	"github.com/ShiLuis/KapePOS/internal/repository"
	"github.com/ShiLuis/KapePOS/internal/service"
	"github.com/ShiLuis/KapePOS/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("kapepos", "info")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New("kapepos", cfg.LogLevel)
	zlog.Logger = log

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Set up MongoDB connection
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongoDB.Client().Disconnect(context.Background())
	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}
	log.Info().Str("db", cfg.MongoDBName).Msg("connected to MongoDB")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	redisCache := cache.NewRedisCache(redisClient)

	menuRepo := repository.NewMongoMenuRepository(mongoDB)
	source, bundled := buildCatalog(cfg, menuRepo, redisCache, log)
	menuSvc := service.NewMenuService(menuRepo, redisCache, source, log)
	if n, err := menuSvc.Seed(ctx, bundled); err != nil {
		log.Warn().Err(err).Msg("menu seed failed")
	} else if n > 0 {
		log.Info().Int("items", n).Msg("seeded menu from bundled catalog")
	}

	orderRepo, closeOrders := buildOrderStore(cfg, mongoDB, log)
	defer closeOrders()

	cartSvc := service.NewCartService(repository.NewMongoCartRepository(mongoDB), redisCache, source, cfg.TaxRate, log)
	orderSvc := service.NewOrderService(orderRepo, cfg.Location)

	var checkoutOpts []checkout.Option
	if len(cfg.KafkaBrokers) > 0 {
		pub := publisher.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer pub.Close()
		checkoutOpts = append(checkoutOpts, checkout.WithEvents(pub))

		stockConsumer := consumer.NewStockConsumer(menuSvc, redisCache, log, cfg.ConsumerGroup, cfg.KafkaBrokers...)
		defer stockConsumer.Close()
		go stockConsumer.Run(ctx)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Msg("order events enabled")
	}
	checkoutSvc := service.NewCheckoutService(cartSvc, orderRepo, log, checkoutOpts...)

	router := h.NewRouter(h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	}, h.Handlers{
		Menu:     h.NewMenuHandler(menuSvc, cfg.RequestTimeout),
		Cart:     h.NewCartHandler(cartSvc, cfg.RequestTimeout),
		Checkout: h.NewCheckoutHandler(checkoutSvc, cfg.RequestTimeout),
		Orders:   h.NewOrdersHandler(orderSvc, cfg.RequestTimeout),
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "kapepos"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("KapePOS starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

// buildCatalog picks the menu source for CATALOG_MODE and returns the bundled
// menu for seeding.
func buildCatalog(cfg *config.Config, menuRepo repository.MenuRepository, menuCache cache.MenuCache, log zerolog.Logger) (catalog.Source, []domain.MenuItem) {
	static, err := catalog.NewStaticSource()
	if err != nil {
		log.Fatal().Err(err).Msg("bundled menu is corrupt")
	}
	bundled, _ := static.Items(context.Background())

	remote := catalog.NewStoreSource(menuRepo, menuCache, log)
	switch cfg.CatalogMode {
	case config.CatalogStatic:
		return static, bundled
	case config.CatalogRemote:
		return remote, bundled
	default:
		return catalog.Fallback(remote, static, log), bundled
	}
}

func buildOrderStore(cfg *config.Config, mongoDB *mongo.Database, log zerolog.Logger) (repository.OrderRepository, func()) {
	if cfg.OrderStore != config.OrderStorePostgres {
		return repository.NewMongoOrderRepository(mongoDB), func() {}
	}

	repo, err := repository.NewPostgresOrderRepository(&cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Postgres")
	}
	if err := repo.RunMigrations(&cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Str("host", cfg.Postgres.Host).Msg("orders stored in Postgres")
	return repo, func() {
		if err := repo.Close(); err != nil {
			log.Warn().Err(err).Msg("closing Postgres")
		}
	}
}
