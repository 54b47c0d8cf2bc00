// Command activity-logger consumes saved-event activity messages and
// appends them to a log file.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/config"
	"github.com/fyd-app/fyd-api/internal/queue"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadActivityConfig()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.ActivityConsumer{URL: cfg.AMQPURL, LogPath: cfg.LogPath, Logger: logger}
	logger.Info("activity-logger started", zap.String("queue", queue.ActivityQueueName), zap.String("log", cfg.LogPath))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
	logger.Info("activity-logger stopped")
}
