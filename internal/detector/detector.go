// Package detector puts the optional cache, history and publishing layers
// around the emotion classifier client.
package detector

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/emotiflow/internal/models"
)

type Classifier interface {
	Detect(ctx context.Context, text string) (models.EmotionResult, error)
}

type ResultCache interface {
	GetResult(ctx context.Context, text string) (models.EmotionResult, bool, error)
	StoreResult(ctx context.Context, text string, result models.EmotionResult) error
}

type HistoryStore interface {
	PutAnalysis(ctx context.Context, analysis models.Analysis) error
	RecentAnalyses(ctx context.Context, limit int) ([]models.Analysis, error)
}

type Publisher interface {
	PublishAnalysis(ctx context.Context, analysis models.Analysis) error
}

// SIDE_EFFECT_TIMEOUT bounds history writes and result publishing so a slow
// store or broker cannot hold up a detection.
const SIDE_EFFECT_TIMEOUT = 3 * time.Second

type Option func(*Service)

func WithSideEffectTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.sideEffectTimeout = timeout
		}
	}
}

func WithCache(cache ResultCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithHistory(store HistoryStore) Option {
	return func(s *Service) { s.history = store }
}

func WithPublisher(publisher Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// Service is safe for concurrent use as long as its collaborators are.
type Service struct {
	classifier Classifier
	cache      ResultCache
	history    HistoryStore
	publisher  Publisher
	now        func() time.Time
	newID      func() string

	sideEffectTimeout time.Duration
}

func New(classifier Classifier, opts ...Option) *Service {
	s := &Service{
		classifier: classifier,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },

		sideEffectTimeout: SIDE_EFFECT_TIMEOUT,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Detect(ctx context.Context, text string) (models.EmotionResult, error) {
	analysis, err := s.Analyze(ctx, text)
	if err != nil {
		return models.EmotionResult{}, err
	}
	return analysis.Result(), nil
}

// Analyze classifies text and records the outcome. Classifier errors are
// returned as is; cache, history and publish failures are only logged.
func (s *Service) Analyze(ctx context.Context, text string) (models.Analysis, error) {
	return s.AnalyzeWithID(ctx, "", text)
}

// AnalyzeWithID is Analyze keeping a caller supplied id, so results can be
// matched to the request that produced them. An empty id gets a fresh one.
func (s *Service) AnalyzeWithID(ctx context.Context, id, text string) (models.Analysis, error) {
	result, cached := s.lookup(ctx, text)
	if !cached {
		var err error
		result, err = s.classifier.Detect(ctx, text)
		if err != nil {
			return models.Analysis{}, err
		}
		s.remember(ctx, text, result)
	}

	if id == "" {
		id = s.newID()
	}
	analysis := models.NewAnalysis(id, text, result, s.now().UTC())
	analysis.Cached = cached

	if s.history != nil {
		storeCtx, cancel := context.WithTimeout(ctx, s.sideEffectTimeout)
		err := s.history.PutAnalysis(storeCtx, analysis)
		cancel()
		if err != nil {
			slog.Warn("[Detector] Failed to store analysis",
				slog.String("id", analysis.ID),
				slog.String("error", err.Error()))
		}
	}

	if s.publisher != nil {
		publishCtx, cancel := context.WithTimeout(ctx, s.sideEffectTimeout)
		err := s.publisher.PublishAnalysis(publishCtx, analysis)
		cancel()
		if err != nil {
			slog.Warn("[Detector] Failed to publish analysis",
				slog.String("id", analysis.ID),
				slog.String("error", err.Error()))
		}
	}

	return analysis, nil
}

// History returns recent analyses, or ErrHistoryDisabled without a store.
func (s *Service) History(ctx context.Context, limit int) ([]models.Analysis, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.RecentAnalyses(ctx, limit)
}

func (s *Service) lookup(ctx context.Context, text string) (models.EmotionResult, bool) {
	if s.cache == nil {
		return models.EmotionResult{}, false
	}
	result, ok, err := s.cache.GetResult(ctx, text)
	if err != nil {
		slog.Warn("[Detector] Cache lookup failed",
			slog.String("error", err.Error()))
		return models.EmotionResult{}, false
	}
	return result, ok
}

func (s *Service) remember(ctx context.Context, text string, result models.EmotionResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.StoreResult(ctx, text, result); err != nil {
		slog.Warn("[Detector] Failed to cache result",
			slog.String("error", err.Error()))
	}
}
