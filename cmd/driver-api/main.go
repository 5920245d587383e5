// README: Entry point; loads config, wires stores and services, serves the driver API until SIGTERM.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"kargo/internal/config"
	httptransport "kargo/internal/http"
	"kargo/internal/infra"
	"kargo/internal/maps"
	"kargo/internal/modules/booking"
	"kargo/internal/modules/feed"
	"kargo/internal/modules/income"
	"kargo/internal/modules/pricing"
	"kargo/internal/modules/profile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := infra.NewLogger(os.Stdout, "kargo-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fb *infra.Firebase
	if cfg.Firebase.ProjectID != "" {
		fb, err = infra.NewFirebase(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile, cfg.Firebase.StorageBucket)
		if err != nil {
			log.Fatalf("firebase init: %v", err)
		}
	}

	var verifier infra.TokenVerifier
	switch cfg.Auth.Mode {
	case config.AuthJWT:
		verifier, err = infra.NewJWTVerifier(cfg.Auth.JWTSecret)
	default:
		verifier, err = fb.Verifier(ctx)
	}
	if err != nil {
		log.Fatalf("auth init: %v", err)
	}

	var (
		bookingStore booking.Store
		profileStore profile.Store
	)
	switch cfg.Store {
	case config.StoreFirestore:
		client, err := fb.Firestore(ctx)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		bookingStore = booking.NewFirestoreStore(client, logger)
		profileStore = profile.NewFirestoreStore(client)
	case config.StorePostgres:
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			logger.Warn("redis unavailable; booking changes will be polled", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
		bookingStore = booking.NewPGStore(db, rdb, logger)
		profileStore = profile.NewPGStore(db)
	default:
		logger.Warn("using in-memory stores; data is lost on restart")
		bookingStore = booking.NewMemoryStore()
		profileStore = profile.NewMemoryStore()
	}

	var events booking.EventPublisher
	if cfg.AMQP.URL != "" {
		mq, err := infra.NewRabbitMQ(cfg.AMQP.URL)
		if err != nil {
			log.Fatalf("rabbitmq init: %v", err)
		}
		defer mq.Close()
		events = booking.NewAMQPPublisher(mq, infra.BookingEventsExchange)
	}

	var blobs profile.BlobStore = infra.NewMemoryBlobStore()
	if fb != nil && cfg.Firebase.StorageBucket != "" {
		bucket, name, err := fb.Bucket(ctx)
		if err != nil {
			log.Fatal(err)
		}
		blobs = infra.NewBucketStore(bucket, name)
	}

	var (
		mapsSvc   httptransport.MapsService
		estimator pricing.Estimator
	)
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatal(err)
		}
		mapsSvc, estimator = routes, routes
	} else {
		logger.Warn("KARGO_MAPS_API_KEY not set; quotes, routes and geocoding are disabled")
	}

	bookingSvc := booking.NewService(bookingStore, events, logger)
	profileSvc := profile.NewService(profileStore, blobs)

	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.ServerDeps{
		Bookings: bookingSvc,
		Feed:     feed.NewService(bookingStore, profileStore),
		Income: income.NewService(bookingSvc, income.Config{
			PlatformShare: cfg.Income.PlatformShare,
			YearAware:     cfg.Income.YearAware,
			Location:      cfg.Location,
			Currency:      cfg.Pricing.Currency,
		}),
		Pricing:        pricing.NewService(pricing.RatesFromConfig(cfg.Pricing), estimator),
		Profiles:       profileSvc,
		Maps:           mapsSvc,
		Verifier:       verifier,
		Logger:         logger,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})

	logger.Info("starting", slog.String("store", cfg.Store), slog.String("auth", cfg.Auth.Mode))
	if err := server.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
