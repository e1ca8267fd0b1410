package models

const (
	EmotionAnger   = "anger"
	EmotionDisgust = "disgust"
	EmotionFear    = "fear"
	EmotionJoy     = "joy"
	EmotionSadness = "sadness"
)

// Labels is the fixed order scores are reported and compared in.
var Labels = []string{EmotionAnger, EmotionDisgust, EmotionFear, EmotionJoy, EmotionSadness}

// EmotionPredictRequest is the raw document payload the classifier expects.
type (
	EmotionPredictRequest struct {
		RawDocument RawDocument `json:"raw_document"`
	}
	RawDocument struct {
		Text string `json:"text"`
	}
)

// EmotionPredictResponse mirrors the part of the classifier reply we read.
// Fields are pointers so a missing score can be told apart from a zero score.
type (
	EmotionPredictResponse struct {
		EmotionPredictions []EmotionPrediction `json:"emotionPredictions"`
	}
	EmotionPrediction struct {
		Emotion *RawEmotionScores `json:"emotion"`
	}
	RawEmotionScores struct {
		Anger   *float64 `json:"anger"`
		Disgust *float64 `json:"disgust"`
		Fear    *float64 `json:"fear"`
		Joy     *float64 `json:"joy"`
		Sadness *float64 `json:"sadness"`
	}
)

type EmotionScores struct {
	Anger   float64 `json:"anger"`
	Disgust float64 `json:"disgust"`
	Fear    float64 `json:"fear"`
	Joy     float64 `json:"joy"`
	Sadness float64 `json:"sadness"`
}

// Score returns the score for label, or false if label is not tracked.
func (s EmotionScores) Score(label string) (float64, bool) {
	switch label {
	case EmotionAnger:
		return s.Anger, true
	case EmotionDisgust:
		return s.Disgust, true
	case EmotionFear:
		return s.Fear, true
	case EmotionJoy:
		return s.Joy, true
	case EmotionSadness:
		return s.Sadness, true
	default:
		return 0, false
	}
}

// Dominant returns the label with the highest score. A later label only
// replaces the current one when strictly greater, so ties go to the earlier label.
func (s EmotionScores) Dominant() string {
	dominant := Labels[0]
	best, _ := s.Score(dominant)
	for _, label := range Labels[1:] {
		score, _ := s.Score(label)
		if score > best {
			dominant = label
			best = score
		}
	}
	return dominant
}

type EmotionResult struct {
	EmotionScores
	DominantEmotion string `json:"dominant_emotion"`
}

func NewEmotionResult(scores EmotionScores) EmotionResult {
	return EmotionResult{
		EmotionScores:   scores,
		DominantEmotion: scores.Dominant(),
	}
}
