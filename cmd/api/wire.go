package main

import (
	"context"
	"fmt"
	"net/http"

	"printsociety/internal/artwork"
	"printsociety/internal/cache"
	"printsociety/internal/clock"
	"printsociety/internal/config"
	"printsociety/internal/database"
	"printsociety/internal/handler"
	"printsociety/internal/notify"
	"printsociety/internal/pricing"
	"printsociety/internal/promo"
	"printsociety/internal/repository"
	"printsociety/internal/router"
	"printsociety/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// storage holds the Postgres-backed pieces every command needs.
type storage struct {
	pool     *pgxpool.Pool
	products repository.ProductRepository
	orders   repository.OrderRepository
	proofs   repository.ProofRepository
	outbox   repository.OutboxRepository
	writer   *kafka.Writer
}

func buildStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &storage{
		pool:     pool,
		products: repository.NewProductRepository(pool, logger),
		orders:   repository.NewOrderRepository(pool, logger),
		proofs:   repository.NewProofRepository(pool, logger),
		outbox:   repository.NewOutboxRepository(pool, logger),
		writer:   notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic),
	}, nil
}

func (s *storage) Close() {
	_ = s.writer.Close()
	s.pool.Close()
}

func (s *storage) proofService(cfg *config.Config, logger zerolog.Logger) service.ProofService {
	return service.NewProofService(s.proofs, s.orders, s.outbox, mustSettings(cfg), clock.Real, logger)
}

func (s *storage) relay(cfg *config.Config, logger zerolog.Logger) *notify.Relay {
	return notify.NewRelay(s.outbox, s.writer, notify.RelayConfig{
		Interval:  cfg.Outbox.PollInterval,
		BatchSize: cfg.Outbox.BatchSize,
	}, logger)
}

// application is the fully wired API server.
type application struct {
	*storage
	redis  *redis.Client
	Router http.Handler
	Relay  *notify.Relay
}

func (a *application) Close() {
	_ = a.redis.Close()
	a.storage.Close()
}

func build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*application, error) {
	settings, err := settingsFrom(cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	app := &application{storage: store, redis: redisClient}

	s3Client, err := newS3Client(ctx, cfg.S3)
	if err != nil {
		app.Close()
		return nil, err
	}

	// Promo catalog: S3 first when enabled, local files otherwise
	var s3Loader promo.Loader
	var artworkStore service.ArtworkStore = artwork.Disabled{}
	if cfg.S3.Enabled {
		bucket := cfg.S3.PromoBucket
		if bucket == "" {
			bucket = cfg.S3.ArtworkBucket
		}
		s3Loader = promo.NewS3Loader(s3Client, bucket, logger)
		artworkStore = artwork.NewStore(s3Client, cfg.S3.ArtworkBucket, cfg.S3.PublicBaseURL, logger)
	} else {
		logger.Warn().Msg("S3 disabled: promo catalog loads from local files and artwork uploads are rejected")
	}
	loader := promo.NewFallbackLoader(s3Loader, promo.NewFileLoader(logger), cfg.S3.PromoPrefix, cfg.S3.Enabled, logger)

	catalog, err := promo.LoadCatalog(ctx, loader, cfg.Promo.FilePaths, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize promo catalog: %w", err)
	}

	// Initialize services
	engine := pricing.NewEngine(logger)
	carts := cache.NewRedisCache(redisClient, cfg.Redis.CartTTL)

	productService := service.NewProductService(store.products, engine, logger)
	cartService := service.NewCartService(carts, productService, engine, promo.NewResolver(catalog, clock.Real, logger),
		artworkStore, settings, clock.Real, logger)
	orderService := service.NewOrderService(store.orders, store.proofs, store.outbox, carts, settings, clock.Real, logger)
	proofService := service.NewProofService(store.proofs, store.orders, store.outbox, settings, clock.Real, logger)

	// Initialize HTTP handlers
	app.Router = router.New(router.Handlers{
		Products: handler.NewProductHandler(productService, logger),
		Carts:    handler.NewCartHandler(cartService, orderService, settings.MaxArtworkBytes, logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		Proofs:   handler.NewProofHandler(proofService, clock.Real, logger),
	}, router.Options{
		APIKey:   cfg.Auth.APIKey,
		AdminKey: cfg.Auth.AdminAPIKey,
	}, logger)
	app.Relay = store.relay(cfg, logger)

	return app, nil
}

func newS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func settingsFrom(cfg *config.Config) (service.Settings, error) {
	shipping, err := cfg.Shop.Shipping()
	if err != nil {
		return service.Settings{}, err
	}

	return service.Settings{
		SetupFee:        cfg.Shop.SetupFee,
		MaxRevisions:    cfg.Shop.MaxRevisions,
		ReviewWindow:    cfg.Shop.ReviewWindow,
		ProofBaseURL:    cfg.Shop.ProofBaseURL,
		MaxArtworkBytes: cfg.Shop.MaxArtworkBytes(),
		ShippingOptions: shipping,
	}, nil
}

// mustSettings is for commands that run after config.Load, which already validated the
// shipping options.
func mustSettings(cfg *config.Config) service.Settings {
	settings, err := settingsFrom(cfg)
	if err != nil {
		panic(err)
	}
	return settings
}
