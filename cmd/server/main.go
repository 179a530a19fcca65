package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/logging"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/router"
	"github.com/iliyamo/event-ticketing/internal/service"
	"github.com/iliyamo/event-ticketing/internal/telemetry"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("Redis unavailable, caching and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	// Repositories
	events := repository.NewEventRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	tokens := &repository.TokenRepo{DB: db}
	tx := database.NewTxManager(db)

	// Services
	publisher := service.NewBookingPublisher(cfg.RabbitMQURL, log)
	defer publisher.Close()

	bookingSvc := service.NewBookingService(tx, events, bookings, utils.NewBookingCodeGenerator(),
		service.WithTxTimeout(cfg.Booking.TxTimeout),
		service.WithCodeRetries(cfg.Booking.CodeRetries),
		service.WithPublisher(publisher),
		service.WithLogger(log),
	)
	eventSvc := service.NewEventService(events, log)
	userSvc := service.NewUserService(users, cfg.BcryptCost, log)
	authSvc := service.NewAuthService(tx, users, tokens, service.AuthConfig{
		Secret:         cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
	}, log)

	cache := middleware.NewResponseCache(cfg.Cache, rdb, log)
	e := router.New(router.Handlers{
		Health:   handler.Health(db),
		Auth:     handler.NewAuthHandler(authSvc, userSvc),
		Users:    handler.NewUserHandler(userSvc),
		Events:   handler.NewEventHandler(eventSvc, cache, log),
		Bookings: handler.NewBookingHandler(bookingSvc, cache, log),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Log:       log,
		Limiter:   middleware.NewRateLimiter(cfg.RateLimit, rdb, log),
		Cache:     cache,
	})

	if cfg.ConsumerEnabled {
		consumer := queue.NewConsumer(cfg.RabbitMQURL, cfg.BookingLogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Booking consumer stopped", zap.Error(err))
			}
		}()
	}

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Info("Listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer shutdown", zap.Error(err))
	}
	return nil
}
