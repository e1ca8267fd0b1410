package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/emotiflow/config"
	"github.com/spacesedan/emotiflow/internal/models"
)

// EmotionClient talks to the hosted Watson NLP emotion classifier.
type EmotionClient struct {
	Client      *http.Client
	Endpoint    string
	ModelID     string
	MaxAttempts int
	Backoff     time.Duration
}

func NewEmotionClient(cfg config.Config) *EmotionClient {
	slog.Info("[EmotionClient] Initializing Client",
		slog.String("endpoint", cfg.WatsonURL),
		slog.Duration("timeout", cfg.WatsonTimeout),
		slog.Int("max_attempts", cfg.WatsonMaxAttempts),
		slog.String("env", cfg.Env))

	return &EmotionClient{
		Client: &http.Client{
			Timeout: cfg.WatsonTimeout,
		},
		Endpoint:    cfg.WatsonURL,
		ModelID:     cfg.WatsonModelID,
		MaxAttempts: cfg.WatsonMaxAttempts,
		Backoff:     INITIAL_BACKOFF,
	}
}

// Detect sends text to the classifier and returns the five scores together
// with the dominant emotion.
func (e *EmotionClient) Detect(ctx context.Context, text string) (models.EmotionResult, error) {
	slog.Debug("[EmotionClient] Requesting emotion prediction",
		slog.Int("text_length", len(text)))
	start := time.Now()

	var response models.EmotionPredictResponse
	input := models.EmotionPredictRequest{RawDocument: models.RawDocument{Text: text}}
	if err := e.postJSON(ctx, input, &response); err != nil {
		slog.Error("[EmotionClient] Emotion prediction failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return models.EmotionResult{}, err
	}

	scores, err := extractScores(response)
	if err != nil {
		slog.Error("[EmotionClient] Emotion prediction had unexpected shape",
			slog.String("error", err.Error()))
		return models.EmotionResult{}, err
	}

	result := models.NewEmotionResult(scores)
	slog.Info("[EmotionClient] Emotion prediction successful",
		slog.String("dominant_emotion", result.DominantEmotion),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// HealthCheck reports whether the classifier answers a probe request.
func (e *EmotionClient) HealthCheck(ctx context.Context) bool {
	_, err := e.Detect(ctx, HEALTHCHECK_TEXT)
	var transportErr *TransportError
	return !errors.As(err, &transportErr)
}

func extractScores(response models.EmotionPredictResponse) (models.EmotionScores, error) {
	if len(response.EmotionPredictions) == 0 {
		return models.EmotionScores{}, &ResponseShapeError{Reason: "emotionPredictions is missing or empty"}
	}

	raw := response.EmotionPredictions[0].Emotion
	if raw == nil {
		return models.EmotionScores{}, &ResponseShapeError{Reason: "emotionPredictions[0].emotion is missing"}
	}

	fields := []struct {
		label string
		value *float64
	}{
		{models.EmotionAnger, raw.Anger},
		{models.EmotionDisgust, raw.Disgust},
		{models.EmotionFear, raw.Fear},
		{models.EmotionJoy, raw.Joy},
		{models.EmotionSadness, raw.Sadness},
	}
	for _, f := range fields {
		if f.value == nil {
			return models.EmotionScores{}, &ResponseShapeError{Reason: "emotion score " + f.label + " is missing"}
		}
	}

	return models.EmotionScores{
		Anger:   *raw.Anger,
		Disgust: *raw.Disgust,
		Fear:    *raw.Fear,
		Joy:     *raw.Joy,
		Sadness: *raw.Sadness,
	}, nil
}

func (e *EmotionClient) DoWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := e.Backoff
	attempts := max(e.MaxAttempts, 1)

	for attempt := 0; attempt < attempts; attempt++ {
		var req *http.Request
		req, err = e.newRequest(ctx, body)
		if err != nil {
			return nil, err
		}

		resp, err = e.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if attempt == attempts-1 {
			break
		}

		if resp != nil {
			resp.Body.Close()
		}

		slog.Warn("[EmotionClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}

	return resp, err
}

// MaxDuration is the longest Detect can take: every attempt running to the
// client timeout plus the backoff between attempts.
func (e *EmotionClient) MaxDuration() time.Duration {
	attempts := max(e.MaxAttempts, 1)
	total := time.Duration(attempts) * e.Client.Timeout
	backoff := e.Backoff
	for i := 1; i < attempts; i++ {
		total += backoff
		backoff = min(backoff*2, MAX_BACKOFF)
	}
	return total
}

func (e *EmotionClient) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set(MODEL_ID_HEADER, e.ModelID)
	return req, nil
}

func (e *EmotionClient) postJSON(ctx context.Context, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := e.DoWithRetry(ctx, body)
	if err != nil {
		return &TransportError{Endpoint: e.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Endpoint: e.Endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("[EmotionClient] Non-success status from classifier",
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return &TransportError{
			Endpoint:   e.Endpoint,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[EmotionClient] Failed to unmarshal response",
			slog.String("endpoint", e.Endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))

		return &ResponseShapeError{Reason: "body is not valid JSON", Err: err}
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
