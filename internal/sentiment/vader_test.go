package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertMarkdownToText(t *testing.T) {
	in := "I am **really** glad [this](https://example.com/post) happened\n\nsee www.example.com"
	assert.Equal(t, "I am really glad this happened see", ConvertMarkdownToText(in))
}

func TestRemoveLinks(t *testing.T) {
	assert.Equal(t, "read this now", RemoveLinks("read [this](http://x.io/a) now"))
	assert.Equal(t, "go  please", RemoveLinks("go https://x.io/a please"))
}

func TestAnalyzeLabels(t *testing.T) {
	assert.Equal(t, "positive", Analyze("I am glad this happened, it is wonderful").Label)
	assert.Equal(t, "negative", Analyze("I am so sad and angry about this terrible news").Label)
	assert.Equal(t, "neutral", Analyze("The meeting is on Tuesday").Label)
}

func TestAnalyzeRange(t *testing.T) {
	p := Analyze("I am really afraid that this will happen")
	assert.GreaterOrEqual(t, p.Compound, -1.0)
	assert.LessOrEqual(t, p.Compound, 1.0)
}
