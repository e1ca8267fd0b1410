package models

import "time"

// Analysis is a single detection kept for history and published downstream.
type Analysis struct {
	ID        string    `json:"id" dynamodbav:"id"`
	Text      string    `json:"text" dynamodbav:"text"`
	Anger     float64   `json:"anger" dynamodbav:"anger"`
	Disgust   float64   `json:"disgust" dynamodbav:"disgust"`
	Fear      float64   `json:"fear" dynamodbav:"fear"`
	Joy       float64   `json:"joy" dynamodbav:"joy"`
	Sadness   float64   `json:"sadness" dynamodbav:"sadness"`
	Dominant  string    `json:"dominant_emotion" dynamodbav:"dominant_emotion"`
	Cached    bool      `json:"cached" dynamodbav:"-"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

func NewAnalysis(id, text string, result EmotionResult, createdAt time.Time) Analysis {
	return Analysis{
		ID:        id,
		Text:      text,
		Anger:     result.Anger,
		Disgust:   result.Disgust,
		Fear:      result.Fear,
		Joy:       result.Joy,
		Sadness:   result.Sadness,
		Dominant:  result.DominantEmotion,
		CreatedAt: createdAt,
	}
}

func (a Analysis) Result() EmotionResult {
	return EmotionResult{
		EmotionScores: EmotionScores{
			Anger:   a.Anger,
			Disgust: a.Disgust,
			Fear:    a.Fear,
			Joy:     a.Joy,
			Sadness: a.Sadness,
		},
		DominantEmotion: a.Dominant,
	}
}

// EmotionRequestMessage is read from the requests topic.
type EmotionRequestMessage struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
