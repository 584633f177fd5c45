package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/reservly/booking-platform/internal/api/router"
	"github.com/reservly/booking-platform/internal/booking"
	"github.com/reservly/booking-platform/internal/business"
	"github.com/reservly/booking-platform/internal/catalog"
	appconfig "github.com/reservly/booking-platform/internal/config"
	"github.com/reservly/booking-platform/internal/events"
	"github.com/reservly/booking-platform/internal/notify"
	"github.com/reservly/booking-platform/internal/observability/metrics"
	"github.com/reservly/booking-platform/internal/scheduling"
	"github.com/reservly/booking-platform/pkg/logging"
)

func main() {
	// Load .env in local development; ignored when absent.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, in-memory otherwise (local runs).
	var (
		catalogRepo catalog.Repository
		bookingRepo booking.Repository
		outboxStore *events.OutboxStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		catalogRepo = catalog.NewPostgresRepository(pool)
		bookingRepo = booking.NewPostgresRepository(pool)
		outboxStore = events.NewOutboxStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		catalogRepo = catalog.NewInMemoryRepository()
		bookingRepo = booking.NewInMemoryRepository()
	}

	// Redis-backed business profiles.
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	profileStore := business.NewStore(redisClient)

	// Notification senders.
	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else if cfg.SESFromEmail != "" {
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		emailSender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	}
	if emailSender == nil {
		emailSender = notify.NewStubEmailSender(logger)
	}

	var whatsappSender notify.WhatsAppSender
	if wa := notify.NewMetaWhatsAppSender(notify.MetaWhatsAppConfig{
		AccessToken:   cfg.WhatsAppAccessToken,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		BaseURL:       cfg.WhatsAppBaseURL,
	}, logger); wa != nil {
		whatsappSender = wa
	} else {
		whatsappSender = notify.NewStubWhatsAppSender(logger)
	}

	notifySvc := notify.NewService(emailSender, whatsappSender, profileStore, logger)

	// Outbox delivery loop, only when the outbox is database-backed.
	if outboxStore != nil {
		dispatcher := notify.NewDispatcher(notifySvc, logger)
		deliverer := events.NewDeliverer(outboxStore, dispatcher, logger).
			WithBatchSize(int32(cfg.OutboxBatchSize)).
			WithInterval(cfg.OutboxPollInterval)
		go deliverer.Start(ctx)
	}

	// Scheduling and booking core.
	bookingMetrics := metrics.NewBookingMetrics(nil)
	calc := scheduling.NewCalculator(scheduling.NewResolver(catalogRepo), bookingRepo, cfg.AvailabilityWorkers)

	var publisher booking.EventPublisher
	if outboxStore != nil {
		publisher = outboxStore
	}
	bookingSvc := booking.NewService(bookingRepo, catalogRepo, calc, publisher, bookingMetrics, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		BookingHandler:     booking.NewHandler(bookingSvc, logger),
		CatalogHandler:     catalog.NewHandler(catalogRepo, logger),
		ProfileHandler:     business.NewHandler(profileStore, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// loadAWSConfig initializes the AWS SDK with optional static credentials and
// a LocalStack-style endpoint override for local development.
func loadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(endpoint)
	}
	return awsCfg, nil
}
