package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/emotiflow/config"
	"github.com/spacesedan/emotiflow/internal/clients"
	"github.com/spacesedan/emotiflow/internal/detector"
	"github.com/spacesedan/emotiflow/internal/models"
	"github.com/spacesedan/emotiflow/internal/monitoring"
)

type stubDetector struct {
	result models.EmotionResult
	err    error
	calls  int
	texts  []string
}

func (s *stubDetector) Detect(ctx context.Context, text string) (models.EmotionResult, error) {
	s.calls++
	s.texts = append(s.texts, text)
	return s.result, s.err
}

type stubClassifier struct {
	result models.EmotionResult
}

func (s stubClassifier) Detect(ctx context.Context, text string) (models.EmotionResult, error) {
	return s.result, nil
}

type memoryHistory struct {
	analyses []models.Analysis
}

func (m *memoryHistory) PutAnalysis(ctx context.Context, a models.Analysis) error {
	m.analyses = append(m.analyses, a)
	return nil
}

func (m *memoryHistory) RecentAnalyses(ctx context.Context, limit int) ([]models.Analysis, error) {
	return m.analyses, nil
}

var joyResult = models.NewEmotionResult(models.EmotionScores{Anger: 0.1, Disgust: 0.05, Fear: 0.05, Joy: 0.7, Sadness: 0.1})

func newTestServer(d Detector) *Server {
	return New(config.Config{Port: 5000}, d, nil)
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestEmotionDetectorMissingText(t *testing.T) {
	for _, target := range []string{"/emotionDetector", "/emotionDetector?textToAnalyze="} {
		d := &stubDetector{result: joyResult}
		w := get(newTestServer(d), target)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Please provide text to analyze.", w.Body.String())
		assert.Equal(t, 0, d.calls)
	}
}

func TestEmotionDetectorFormatsSentence(t *testing.T) {
	d := &stubDetector{result: joyResult}
	w := get(newTestServer(d), "/emotionDetector?textToAnalyze=Test")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		"For the given statement, the system response is 'anger': 0.1, 'disgust': 0.05, 'fear': 0.05, 'joy': 0.7 and 'sadness': 0.1. The dominant emotion is joy.",
		w.Body.String())
	assert.Equal(t, []string{"Test"}, d.texts)
}

func TestEmotionDetectorPassesTextUnchanged(t *testing.T) {
	d := &stubDetector{result: joyResult}
	get(newTestServer(d), "/emotionDetector?textToAnalyze=I%20am%20glad%20this%20happened")
	assert.Equal(t, []string{"I am glad this happened"}, d.texts)
}

func TestEmotionDetectorErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"transport", &clients.TransportError{Endpoint: "x", Err: errors.New("connection refused")}, http.StatusServiceUnavailable},
		{"upstream status", &clients.TransportError{Endpoint: "x", StatusCode: 500, Err: errors.New("Internal Server Error")}, http.StatusServiceUnavailable},
		{"shape", &clients.ResponseShapeError{Reason: "emotionPredictions is missing or empty"}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newTestServer(&stubDetector{err: tt.err}), "/emotionDetector?textToAnalyze=Test")
			assert.Equal(t, tt.want, w.Code)
			assert.NotContains(t, w.Body.String(), "dominant emotion")
		})
	}
}

func TestIndexPage(t *testing.T) {
	w := get(newTestServer(&stubDetector{}), "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "/emotionDetector?textToAnalyze=")
}

func TestEmotionsAPIWithPlainDetector(t *testing.T) {
	w := get(newTestServer(&stubDetector{result: joyResult}), "/api/emotions?text=I%20am%20glad%20this%20happened")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "joy", body["dominant_emotion"])
	assert.Equal(t, 0.7, body["joy"])
	assert.NotContains(t, body, "id")
	polarity := body["polarity"].(map[string]interface{})
	assert.Equal(t, "positive", polarity["label"])
}

func TestEmotionsAPIWithService(t *testing.T) {
	svc := detector.New(stubClassifier{result: joyResult}, detector.WithHistory(&memoryHistory{}))
	w := get(newTestServer(svc), "/api/emotions?text=Test")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, false, body["cached"])
}

func TestEmotionsAPIErrors(t *testing.T) {
	w := get(newTestServer(&stubDetector{}), "/api/emotions")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(newTestServer(&stubDetector{err: &clients.ResponseShapeError{Reason: "x"}}), "/api/emotions?text=Test")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHistory(t *testing.T) {
	history := &memoryHistory{}
	svc := detector.New(stubClassifier{result: joyResult}, detector.WithHistory(history))
	s := newTestServer(svc)

	get(s, "/api/emotions?text=first")
	get(s, "/api/emotions?text=second")

	w := get(s, "/api/history?limit=5")
	require.Equal(t, http.StatusOK, w.Code)

	var body historyResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "first", body.Analyses[0].Text)
}

func TestHistoryUnavailable(t *testing.T) {
	w := get(newTestServer(&stubDetector{}), "/api/history")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(newTestServer(detector.New(stubClassifier{})), "/api/history")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(newTestServer(detector.New(stubClassifier{}, detector.WithHistory(&memoryHistory{}))), "/api/history?limit=zero")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	health := &monitoring.ClassifierHealth{}
	s := New(config.Config{}, &stubDetector{}, health)

	var body map[string]string
	w := get(s, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "unknown", body["classifier"])

	health.Store(true)
	w = get(s, "/health")
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "healthy", body["classifier"])
}

func TestMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/emotionDetector?textToAnalyze=Test", nil)
	w := httptest.NewRecorder()
	newTestServer(&stubDetector{}).Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

type stalledPublisher struct{}

func (stalledPublisher) PublishAnalysis(ctx context.Context, analysis models.Analysis) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestEmotionDetectorNotHeldUpByPublisher(t *testing.T) {
	svc := detector.New(stubClassifier{result: joyResult},
		detector.WithPublisher(stalledPublisher{}),
		detector.WithSideEffectTimeout(20*time.Millisecond))

	start := time.Now()
	w := get(newTestServer(svc), "/emotionDetector?textToAnalyze=Test")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The dominant emotion is joy.")
	assert.Less(t, time.Since(start), time.Second)
}
