// Command server runs the VTuber metadata API: REST and GraphQL read
// endpoints over MongoDB with a Redis response cache.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ihateani-me/ihaapi-go/internal/cache"
	"github.com/ihateani-me/ihaapi-go/internal/config"
	"github.com/ihateani-me/ihaapi-go/internal/db"
	"github.com/ihateani-me/ihaapi-go/internal/db/repository"
	"github.com/ihateani-me/ihaapi-go/internal/graphql"
	"github.com/ihateani-me/ihaapi-go/internal/handler"
	"github.com/ihateani-me/ihaapi-go/internal/steam"
	"github.com/ihateani-me/ihaapi-go/internal/u2"
	"github.com/ihateani-me/ihaapi-go/internal/vtuber"
	"github.com/ihateani-me/ihaapi-go/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	log := logger.Named("main")

	ctx := context.Background()

	database, err := db.Connect(ctx, &db.Config{
		URI:            cfg.MongoDB.URI,
		Database:       cfg.MongoDB.Database,
		ConnectTimeout: cfg.MongoDB.ConnectTimeout,
		MaxPoolSize:    cfg.MongoDB.MaxPoolSize,
	})
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		if err := db.Close(context.Background(), database); err != nil {
			log.Error("mongodb disconnect failed", zap.Error(err))
		}
	}()
	log.Info("mongodb connection established", zap.String("database", cfg.MongoDB.Database))

	cacheSvc, err := cache.New(ctx, cache.Config{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer cacheSvc.Close() //nolint:errcheck
	log.Info("redis connection established", zap.String("address", cfg.Redis.Address))

	repos := repository.New(database)
	svc := vtuber.NewService(repos.Videos, repos.Channels, repos.Stats, cacheSvc)

	schema, err := graphql.NewSchema(svc, cfg.VTuber.AdminPassword)
	if err != nil {
		return fmt.Errorf("build graphql schema: %w", err)
	}

	steamClient := steam.NewClient(steam.Config{Cache: cacheSvc})
	u2Scraper := u2.NewScraper(u2.Config{
		Passkey: cfg.U2.Passkey,
		Cookies: cfg.U2.Cookies,
		Cache:   cacheSvc,
	})

	router := handler.NewRouter(handler.RouterDeps{
		VTuber:  handler.NewVTuberHandler(svc),
		Games:   handler.NewGamesHandler(steamClient),
		U2:      handler.NewU2Handler(u2Scraper),
		Health:  handler.NewHealthHandler(repos, cacheSvc),
		GraphQL: graphql.NewHandler(schema),
		APIKeys: cfg.VTuber.APIKeys,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				return fmt.Errorf("close server: %w", err)
			}
		}
		log.Info("server stopped gracefully")
	}
	return nil
}
