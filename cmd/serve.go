package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-platform/internal/data/repository"
	"booking-platform/internal/gateway"
	"booking-platform/internal/notify"
	"booking-platform/internal/wire"
	"booking-platform/pkg/database"
	"booking-platform/pkg/lock"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().Bool("migrate", false, "apply the embedded schema before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	config, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()
	logger.Info("Database connected successfully")

	if migrate {
		if err := database.Migrate(ctx, db, logger); err != nil {
			logger.Error("Migration failed", zap.Error(err))
			return err
		}
	}

	// Redis is optional: the exclusion constraint still prevents double
	// booking, only the pre-insert serialization is lost.
	var locker lock.Locker = lock.NoopLocker{}
	rdb, err := database.InitRedis(config.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, booking lock disabled", zap.Error(err))
	} else {
		defer func() { _ = rdb.Close() }()
		locker = lock.NewRedisLocker(rdb, logger)
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	}

	if config.Payment.SecretKey == "" || config.Payment.WebhookSecret == "" {
		logger.Warn("Stripe keys not fully configured, checkout and webhooks will fail")
	}
	provider := gateway.NewStripeClient(config.Payment, nil, logger)

	notifier := notify.NewNotifier(
		notify.NewSMTPMailer(config.Email, logger),
		notify.NewAMQPPublisher(config.AMQP.URL, logger),
		config.Email.FinanceEmail,
		logger,
	)

	repos := repository.NewRepository(db, logger)
	app := wire.Wiring(repos, provider, locker, notifier, config, logger)

	cleanCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if _, err := app.Service.Auth.CleanExpiredSessions(cleanCtx); err != nil {
		logger.Warn("Session cleanup failed", zap.Error(err))
	}
	cancel()

	if err := APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
