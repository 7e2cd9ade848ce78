package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"qanda-service/internal/auth"
	"qanda-service/internal/config"
	"qanda-service/internal/lock"
	"qanda-service/internal/notify"
	svc "qanda-service/internal/service"
	"qanda-service/internal/storage/postgres"
	slogpretty "qanda-service/pkg/handlers/slogPretty"
	"qanda-service/pkg/sl"

	"github.com/redis/go-redis/v9"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	loc, err := cfg.Location()
	if err != nil {
		log.Error("Invalid timezone", sl.Err(err))
		os.Exit(1)
	}

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		log.Error("Failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	registry := notify.NewRegistry()
	hub := notify.NewHub(registry, log)

	var (
		redisClient *redis.Client
		locker      lock.Locker      = lock.NewMemoryLock()
		publisher   notify.Publisher = hub
	)

	if cfg.RedisAddr != "" {
		redisClient, err = lock.Dial(cfg.RedisAddr)
		if err != nil {
			log.Error("Failed to init redis", sl.Err(err))
			os.Exit(1)
		}

		locker = lock.NewRedisLock(redisClient, "lock")

		broker := notify.NewRedisBroker(redisClient, notify.DefaultChannel, hub, log)
		publisher = broker

		go func() {
			if err := broker.Run(ctx); err != nil {
				log.Error("Event broker stopped", sl.Err(err))
			}
		}()
	} else {
		log.Info("No redis configured, events stay on this instance")
	}

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	service := svc.NewService(storage, publisher, locker, tokens, log,
		svc.WithLocation(loc),
		svc.WithMeet(svc.MeetConfig{BaseURL: cfg.Meet.BaseURL, RoomPrefix: cfg.Meet.RoomPrefix}),
		svc.WithIdempotencyTTL(cfg.IdempotencyTTL),
	)

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      newRouter(log, cfg, service, tokens, registry),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	stop()

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis", sl.Err(err))
		} else {
			log.Info("Redis closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
