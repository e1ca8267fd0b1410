package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spacesedan/emotiflow/internal/models"
)

const MISSING_TEXT_MESSAGE = "Please provide text to analyze."

// FormatResponse renders the sentence returned by /emotionDetector.
func FormatResponse(result models.EmotionResult) string {
	return fmt.Sprintf(
		"For the given statement, the system response is 'anger': %s, 'disgust': %s, 'fear': %s, 'joy': %s and 'sadness': %s. The dominant emotion is %s.",
		FormatScore(result.Anger),
		FormatScore(result.Disgust),
		FormatScore(result.Fear),
		FormatScore(result.Joy),
		FormatScore(result.Sadness),
		result.DominantEmotion,
	)
}

// FormatScore prints the shortest decimal that round-trips, keeping a ".0"
// on whole numbers and switching to exponent form below 1e-4.
func FormatScore(score float64) string {
	s := strconv.FormatFloat(score, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}
