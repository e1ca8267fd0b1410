package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/emotiflow/config"
	"github.com/spacesedan/emotiflow/internal/clients"
	"github.com/spacesedan/emotiflow/internal/clients/kafka_client"
	"github.com/spacesedan/emotiflow/internal/consumers"
	"github.com/spacesedan/emotiflow/internal/db"
	"github.com/spacesedan/emotiflow/internal/detector"
	"github.com/spacesedan/emotiflow/internal/logging"
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

	kafkaCfg := kafka_client.GetKafkaConfig(cfg)

	var producer *kafka_client.Producer
	for {
		var err error
		producer, err = kafka_client.NewProducer(kafkaCfg)
		if err == nil {
			break
		}

		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	opts := []detector.Option{detector.WithPublisher(producer)}
	if cfg.CacheEnabled() {
		if cache, err := clients.NewValkeyClient(cfg); err == nil {
			defer cache.Close()
			opts = append(opts, detector.WithCache(cache))
		} else {
			slog.Warn("[Main] Result cache disabled", slog.String("error", err.Error()))
		}
	}
	if cfg.HistoryEnabled() {
		if dynamo, err := clients.NewDynamoDBClient(ctx, cfg); err == nil {
			opts = append(opts, detector.WithHistory(db.NewAnalysisStore(dynamo, cfg.DynamoDBTable)))
		} else {
			slog.Warn("[Main] Analysis history disabled", slog.String("error", err.Error()))
		}
	}
	svc := detector.New(clients.NewEmotionClient(cfg), opts...)

	consumer, err := kafka_client.NewConsumer(kafkaCfg)
	if err != nil {
		slog.Error("[Main] Failed to start consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer consumer.Close()

	iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
	committer := kafka_client.NewCommitHandler(ctx, consumer)
	worker := consumers.NewEmotionRequestConsumer(iterator, committer, consumer, svc)
	if err := worker.Run(ctx); err != nil {
		slog.Error("[Main] Consumer stopped", slog.String("error", err.Error()))
	}
}
