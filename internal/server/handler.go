package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/spacesedan/emotiflow/internal/clients"
	"github.com/spacesedan/emotiflow/internal/detector"
	"github.com/spacesedan/emotiflow/internal/models"
	"github.com/spacesedan/emotiflow/internal/sentiment"
)

type emotionsResponse struct {
	ID string `json:"id,omitempty"`
	models.EmotionResult
	Cached   bool               `json:"cached"`
	Polarity sentiment.Polarity `json:"polarity"`
}

type historyResponse struct {
	Analyses []models.Analysis `json:"analyses"`
	Count    int               `json:"count"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleEmotionDetector(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	text := r.URL.Query().Get("textToAnalyze")
	if text == "" {
		w.Write([]byte(MISSING_TEXT_MESSAGE))
		return
	}

	result, err := s.detector.Detect(r.Context(), text)
	if err != nil {
		status := statusForError(err)
		slog.Error("[Server] Emotion detection failed",
			slog.Int("status", status),
			slog.String("error", err.Error()))
		http.Error(w, messageForStatus(status), status)
		return
	}

	w.Write([]byte(FormatResponse(result)))
}

func (s *Server) handleEmotions(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeJSONError(w, http.StatusBadRequest, MISSING_TEXT_MESSAGE)
		return
	}

	var resp emotionsResponse
	if analyzer, ok := s.detector.(Analyzer); ok {
		analysis, err := analyzer.Analyze(r.Context(), text)
		if err != nil {
			s.writeDetectError(w, err)
			return
		}
		resp.ID = analysis.ID
		resp.Cached = analysis.Cached
		resp.EmotionResult = analysis.Result()
	} else {
		result, err := s.detector.Detect(r.Context(), text)
		if err != nil {
			s.writeDetectError(w, err)
			return
		}
		resp.EmotionResult = result
	}
	resp.Polarity = sentiment.Analyze(text)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.detector.(HistoryProvider)
	if !ok {
		writeJSONError(w, http.StatusNotFound, detector.ErrHistoryDisabled.Error())
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	analyses, err := provider.History(r.Context(), limit)
	if errors.Is(err, detector.ErrHistoryDisabled) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.Error("[Server] Failed to load history", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if analyses == nil {
		analyses = []models.Analysis{}
	}

	writeJSON(w, http.StatusOK, historyResponse{Analyses: analyses, Count: len(analyses)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"classifier": s.health.Status(),
	})
}

func (s *Server) writeDetectError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	slog.Error("[Server] Emotion detection failed",
		slog.Int("status", status),
		slog.String("error", err.Error()))
	writeJSONError(w, status, messageForStatus(status))
}

// statusForError maps classifier failures onto the status the caller sees.
func statusForError(err error) int {
	var transportErr *clients.TransportError
	var shapeErr *clients.ResponseShapeError
	switch {
	case errors.As(err, &transportErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &shapeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func messageForStatus(status int) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "Emotion classifier is unavailable. Please try again later."
	case http.StatusBadGateway:
		return "Emotion classifier returned an unexpected response."
	default:
		return "Failed to analyze text."
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("[Server] Failed to encode response", slog.String("error", err.Error()))
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
