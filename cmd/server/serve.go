package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rentpay-backend/internal/archive"
	"rentpay-backend/internal/auth"
	"rentpay-backend/internal/cache"
	"rentpay-backend/internal/config"
	"rentpay-backend/internal/database"
	"rentpay-backend/internal/db"
	"rentpay-backend/internal/events"
	"rentpay-backend/internal/handlers"
	"rentpay-backend/internal/health"
	h "rentpay-backend/internal/http"
	"rentpay-backend/internal/logging"
	"rentpay-backend/internal/middleware"
	"rentpay-backend/internal/notify"
	"rentpay-backend/internal/processor"
	"rentpay-backend/internal/receipts"
	"rentpay-backend/internal/repositories"
	"rentpay-backend/internal/services"
	"rentpay-backend/internal/timeutil"
	"rentpay-backend/migrations"
)

func serveCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, !skipMigrations)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "start without applying pending migrations")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, migrate bool) error {
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	log := logging.For("server")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := timeutil.SetLocation(cfg.Server.Timezone); err != nil {
		log.WithError(err).Warn("unknown timezone, keeping default")
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("database connected")

	if migrate {
		migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
		_, err := database.NewMigrator(pool, migrations.FS).RunMigrations(migrateCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Redis is optional; a disabled cache sends every lookup to the processor.
	redisCache, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		time.Duration(cfg.Redis.PaymentMethodTTLSeconds)*time.Second)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, payment methods will not be cached")
	}
	defer redisCache.Close()

	var cachePinger health.Pinger
	if redisCache.Enabled() {
		cachePinger = redisCache
	}

	// Repositories
	profileRepo := repositories.NewProfileRepository(pool)
	propertyRepo := repositories.NewPropertyRepository(pool)
	tenancyRepo := repositories.NewTenancyRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	directory := repositories.NewIdentityDirectory(pool)

	// Payment notification fan-out
	hub := notify.NewHub()
	go hub.Run(ctx)
	notifiers := []services.PaymentNotifier{hub}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Workers)
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
		log.WithField("topic", cfg.Kafka.Topic).Info("publishing payment events to kafka")
	}

	var archiver services.EventArchiver
	if cfg.Archive.Enabled {
		s3Archiver, err := archive.New(ctx, archive.Options{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			Bucket:    cfg.Archive.Bucket,
			Prefix:    cfg.Archive.Prefix,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
		})
		if err != nil {
			return err
		}
		archiver = s3Archiver
		log.WithField("bucket", cfg.Archive.Bucket).Info("archiving webhook events")
	}

	// Services
	stripe := processor.NewStripe(cfg.Stripe.SecretKey, "")
	policy := services.NewPolicy(profileRepo, propertyRepo, tenancyRepo)
	propertyService := services.NewPropertyService(propertyRepo, tenancyRepo, profileRepo, directory, policy)
	paymentService := services.NewPaymentService(profileRepo, policy, stripe, cfg.Stripe.Currency)
	profileService := services.NewProfileService(profileRepo)
	accountService := services.NewAccountService(profileRepo, paymentRepo, stripe, redisCache, receipts.NewRenderer(cfg.Stripe.Currency))
	webhookService := services.NewWebhookService(cfg.Stripe.WebhookSecret, paymentRepo, propertyRepo, redisCache, archiver, notifiers...)

	router := h.NewRouter(h.Handlers{
		Payment:      handlers.NewPaymentHandler(paymentService),
		Webhook:      handlers.NewWebhookHandler(webhookService),
		Property:     handlers.NewPropertyHandler(propertyService),
		User:         handlers.NewUserHandler(profileService),
		Account:      handlers.NewAccountHandler(accountService),
		Notification: handlers.NewNotificationHandler(hub),
		Health:       handlers.NewHealthHandler(health.NewHealthChecker(pool, cachePinger)),
	}, middleware.NewAuthMiddleware(auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience)))

	handler := middleware.PanicRecovery(middleware.RequestLogger(middleware.NewCORS(cfg)(router)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
