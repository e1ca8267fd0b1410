package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/emotiflow/internal/models"
)

const (
	INITIAL_FAILURE_BACKOFF = 2 * time.Second
	MAX_FAILURE_BACKOFF     = 60 * time.Second
	SEEK_TIMEOUT_MS         = 5000
)

type MessageIterator interface {
	Next() (*kafka.Message, error)
}

type Committer interface {
	Commit(msg *kafka.Message) error
}

// Seeker is satisfied by *kafka.Consumer.
type Seeker interface {
	Seek(partition kafka.TopicPartition, timeoutMs int) error
}

// Analyzer classifies text under the request's id; the detector service
// publishes the result.
type Analyzer interface {
	AnalyzeWithID(ctx context.Context, id, text string) (models.Analysis, error)
}

type EmotionRequestConsumer struct {
	iterator  MessageIterator
	committer Committer
	seeker    Seeker
	analyzer  Analyzer

	initialBackoff time.Duration
	maxBackoff     time.Duration
}

func NewEmotionRequestConsumer(iterator MessageIterator, committer Committer, seeker Seeker, analyzer Analyzer) *EmotionRequestConsumer {
	return &EmotionRequestConsumer{
		iterator:       iterator,
		committer:      committer,
		seeker:         seeker,
		analyzer:       analyzer,
		initialBackoff: INITIAL_FAILURE_BACKOFF,
		maxBackoff:     MAX_FAILURE_BACKOFF,
	}
}

// Run reads requests until ctx is done or the iterator gives up. Malformed
// messages are committed and skipped. When classification fails the consumer
// seeks back to the failed offset and backs off, so nothing after it on the
// partition is committed until it succeeds.
func (c *EmotionRequestConsumer) Run(ctx context.Context) error {
	slog.Info("[EmotionRequestConsumer] Listening for messages...")

	backoff := c.initialBackoff
	for {
		msg, err := c.iterator.Next()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				slog.Warn("[EmotionRequestConsumer] Stopping consumer...")
				return nil
			}
			return err
		}

		if err := handleMessage(ctx, msg, c.analyzer); err != nil {
			slog.Error("[EmotionRequestConsumer] Failed to analyze message, will redeliver",
				slog.String("key", string(msg.Key)),
				slog.String("offset", msg.TopicPartition.Offset.String()),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()))

			if err := c.seeker.Seek(msg.TopicPartition, SEEK_TIMEOUT_MS); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				slog.Warn("[EmotionRequestConsumer] Stopping consumer...")
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, c.maxBackoff)
			continue
		}
		backoff = c.initialBackoff

		if err := c.committer.Commit(msg); err != nil {
			slog.Warn("[EmotionRequestConsumer] Commit failed",
				slog.String("error", err.Error()))
		}
	}
}

func handleMessage(ctx context.Context, msg *kafka.Message, analyzer Analyzer) error {
	var req models.EmotionRequestMessage
	if err := json.Unmarshal(msg.Value, &req); err != nil || req.Text == "" {
		slog.Warn("[EmotionRequestConsumer] Skipping malformed request",
			slog.String("key", string(msg.Key)))
		return nil
	}

	analysis, err := analyzer.AnalyzeWithID(ctx, req.ID, req.Text)
	if err != nil {
		return err
	}

	slog.Info("[EmotionRequestConsumer] Analyzed request",
		slog.String("id", analysis.ID),
		slog.String("dominant_emotion", analysis.Dominant))
	return nil
}
