package conversation

import "strings"

// Sentiment is a coarse polarity tag attached to user utterances.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "awesome": {}, "excellent": {}, "happy": {},
	"love": {}, "nice": {}, "wonderful": {}, "amazing": {}, "fantastic": {},
	"thanks": {}, "thank": {}, "perfect": {}, "cool": {}, "glad": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "sad": {}, "angry": {},
	"hate": {}, "horrible": {}, "annoying": {}, "worst": {}, "wrong": {},
	"stupid": {}, "useless": {}, "broken": {}, "problem": {}, "sorry": {},
}

// AnalyzeSentiment scores text against small positive and negative lexicons
// and tags it with the dominant polarity. Ties and empty input are neutral.
func AnalyzeSentiment(text string) Sentiment {
	score := 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if _, ok := positiveWords[word]; ok {
			score++
		}
		if _, ok := negativeWords[word]; ok {
			score--
		}
	}

	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
