package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	httptransport "github.com/findteam/identity-service/internal/api/http"
	"github.com/findteam/identity-service/internal/api/http/handlers"
	"github.com/findteam/identity-service/internal/auth"
	"github.com/findteam/identity-service/internal/captcha"
	"github.com/findteam/identity-service/internal/config"
	"github.com/findteam/identity-service/internal/mail"
	"github.com/findteam/identity-service/internal/observability"
	"github.com/findteam/identity-service/internal/persistence"
	"github.com/findteam/identity-service/internal/repository"
	"github.com/findteam/identity-service/internal/service"
)

const shutdownTimeout = 10 * time.Second

func runServer(ctx context.Context, _ *cli.Command) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	mailer, err := mail.NewSender(cfg.Mail, cfg.App.FrontOrigin, logger)
	if err != nil {
		return fmt.Errorf("init mail sender: %w", err)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	store := repository.NewPostgresStore(pg.PoolHandle(), cfg.Postgres.AcquireTimeout())
	authService := service.NewAuthService(service.AuthDependencies{
		Store:              store,
		Hasher:             auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:             tokens,
		Mailer:             mailer,
		NewCode:            auth.NewVerificationCode,
		VerificationWindow: cfg.Auth.VerificationWindow(),
		Logger:             logger,
	})
	projectService := service.NewProjectService(store, logger)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.IsProduction(),
	})
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.App.FrontOrigin}))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Projects:       handlers.NewProjectHandler(projectService),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Captcha:        captchaGate(cfg.Recaptcha, redis, logger),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
	}

	return app.ShutdownWithTimeout(shutdownTimeout)
}

func captchaGate(cfg config.RecaptchaConfig, redis *persistence.Redis, logger *zap.Logger) fiber.Handler {
	if !cfg.Enabled {
		logger.Warn("recaptcha disabled; auth routes are ungated")
		return captcha.Disabled()
	}
	verifier := captcha.NewRecaptchaVerifier(cfg.Secret, cfg.VerifyURL, 5*time.Second)
	return captcha.Middleware(verifier, captcha.NewReplayGuard(redis.Client, cfg.ReplayTTL), logger)
}
