package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/config"
	"github.com/fyd-app/fyd-api/internal/database"
	"github.com/fyd-app/fyd-api/internal/handler"
	"github.com/fyd-app/fyd-api/internal/middleware"
	"github.com/fyd-app/fyd-api/internal/queue"
	"github.com/fyd-app/fyd-api/internal/repository"
	"github.com/fyd-app/fyd-api/internal/router"
	"github.com/fyd-app/fyd-api/internal/seed"
	"github.com/fyd-app/fyd-api/internal/service"
	"github.com/fyd-app/fyd-api/internal/ticketing"
	"github.com/fyd-app/fyd-api/internal/validation"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	rdb := config.NewRedisClient(logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	var pub queue.Publisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		pub = queue.NewAMQPPublisher(cfg.AMQPURL)
		logger.Info("saved-event activity publishing enabled", zap.String("queue", queue.ActivityQueueName))
	}

	v := validation.New()
	authSvc := service.NewAuthService(service.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
		BcryptCost: cfg.BcryptCost,
	}, store, v, logger)
	userSvc := service.NewUserService(store, v, cfg.BcryptCost, pub, logger)

	provider := ticketing.NewClient(cfg.EventsAPIURL, cfg.EventsAPIToken, cfg.EventsAPITimeout, logger)
	fetcher := ticketing.NewCachedClient(provider, rdb, cfg.Cache.TTL, cfg.Cache.Prefix, logger)
	eventSvc := service.NewEventService(fetcher, v, logger)

	if cfg.SeedOnStart {
		if _, err := seed.Run(ctx, store, userSvc, logger); err != nil {
			logger.Fatal("seed users", zap.Error(err))
		}
	}

	limit := middleware.NewTokenBucket(cfg.RateLimit, rdb, logger)
	e := router.New(logger, v)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, userSvc, logger), cfg.JWTSecret, limit)
	router.RegisterUsers(e, handler.NewUserHandler(userSvc, logger), cfg.JWTSecret, limit)
	router.RegisterEvents(e, handler.NewEventHandler(eventSvc, logger), cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDev() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

// openStore returns the configured UserStore and its cleanup.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.UserStore, func()) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using in-memory user store; data is lost on restart")
		return repository.NewMemoryUserRepo(), func() {}
	}

	db, err := database.Open(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("open mongo", zap.Error(err))
	}
	users := repository.NewUserRepo(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}
	logger.Info("mongo connected", zap.String("db", cfg.MongoDB))
	return users, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Client().Disconnect(ctx)
	}
}
