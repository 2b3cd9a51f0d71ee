package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnthoniusHendriyanto/dashboard-auth/config"
	"github.com/AnthoniusHendriyanto/dashboard-auth/db"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/handler"
	repo "github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/repository/postgres"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/service"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/identity"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/logging"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/notify"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/otp"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx, cfg.DBURL); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer dbPool.Close()

	ledger := otp.NewLedger()
	go ledger.Run(ctx, cfg.OTPSweepInterval, func(removed int) {
		logger.Debug("expired otp entries swept", zap.Int("removed", removed))
	})

	authService := service.NewAuthService(
		repo.NewPostgresRepository(dbPool),
		service.NewTokenService(cfg.JWTSecret),
		ledger,
		newNotifier(cfg, logger),
		identity.NewGoogleVerifier(cfg.GoogleClientID),
		cfg,
		service.WithLogger(logger),
	)
	authHandler := handler.NewAuthHandler(authService, logger)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: !cfg.IsDevelopment(),
	})
	handler.RegisterRoutes(app, authHandler, cfg.CORSOrigin)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("auth service listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newNotifier(cfg *config.Config, logger *zap.Logger) domain.Notifier {
	if cfg.SMTPServer == "" {
		logger.Warn("SMTP_SERVER not set, reset codes will only be logged")
		return notify.NewLogNotifier(logger)
	}
	n, err := notify.NewSMTPNotifier(cfg.SMTPServer, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	if err != nil {
		logger.Fatal("invalid SMTP configuration", zap.Error(err))
	}
	return n
}
