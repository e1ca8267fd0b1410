package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/emotiflow/config"
	"github.com/spacesedan/emotiflow/internal/clients"
	"github.com/spacesedan/emotiflow/internal/clients/kafka_client"
	"github.com/spacesedan/emotiflow/internal/db"
	"github.com/spacesedan/emotiflow/internal/detector"
	"github.com/spacesedan/emotiflow/internal/logging"
	"github.com/spacesedan/emotiflow/internal/monitoring"
	"github.com/spacesedan/emotiflow/internal/server"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	emotionClient := clients.NewEmotionClient(cfg)

	var opts []detector.Option
	if cfg.CacheEnabled() {
		cache, err := clients.NewValkeyClient(cfg)
		if err != nil {
			slog.Warn("[Main] Result cache disabled", slog.String("error", err.Error()))
		} else {
			defer cache.Close()
			opts = append(opts, detector.WithCache(cache))
		}
	}
	if cfg.HistoryEnabled() {
		dynamo, err := clients.NewDynamoDBClient(ctx, cfg)
		if err != nil {
			slog.Warn("[Main] Analysis history disabled", slog.String("error", err.Error()))
		} else {
			opts = append(opts, detector.WithHistory(db.NewAnalysisStore(dynamo, cfg.DynamoDBTable)))
		}
	}
	if cfg.KafkaEnabled() {
		producer, err := kafka_client.NewProducer(kafka_client.GetKafkaConfig(cfg))
		if err != nil {
			slog.Warn("[Main] Result publishing disabled", slog.String("error", err.Error()))
		} else {
			defer producer.Close()
			opts = append(opts, detector.WithPublisher(producer))
		}
	}

	health := &monitoring.ClassifierHealth{}
	go monitoring.MonitorClassifierHealth(ctx, emotionClient, health, monitoring.HEALTHCHECK_TIMER)

	srv := server.New(cfg, detector.New(emotionClient, opts...), health)

	go func() {
		<-ctx.Done()
		slog.Info("[Main] Shutting down server...")
		if err := srv.Stop(context.Background()); err != nil {
			slog.Error("[Main] Shutdown failed", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
