package conversation

import "strings"

const defaultSystemPrompt = "You are a friendly voice assistant. Keep replies short, " +
	"conversational, and suitable for being spoken aloud. Answer in the language " +
	"the user spoke in."

// promptHistoryWindow caps how many history entries ride along in a prompt:
// the last three exchanges, user and assistant sides each.
const promptHistoryWindow = 6

// buildPrompt assembles the request text: system prompt, optional persona, a
// tone hint from the input's sentiment, the most recent history entries, and
// the new user input awaiting a reply.
func buildPrompt(systemPrompt, persona string, history []Utterance, input Utterance) string {
	var builder strings.Builder

	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	builder.WriteString(systemPrompt)
	builder.WriteString("\n")
	if persona != "" {
		builder.WriteString(persona)
		builder.WriteString("\n")
	}
	if hint := toneHint(input.Sentiment); hint != "" {
		builder.WriteString(hint)
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	for _, utterance := range history {
		switch utterance.Role {
		case RoleAssistant:
			builder.WriteString("Assistant: ")
		default:
			builder.WriteString("User: ")
		}
		builder.WriteString(utterance.Content)
		builder.WriteString("\n")
	}

	builder.WriteString("User: ")
	builder.WriteString(input.Content)
	builder.WriteString("\nAssistant:")

	return builder.String()
}

// toneHint turns the utterance's sentiment tag into prompt text so the reply
// can adapt its tone. Neutral input adds nothing.
func toneHint(sentiment Sentiment) string {
	switch sentiment {
	case SentimentNegative:
		return "The user sounds unhappy. Be empathetic and patient."
	case SentimentPositive:
		return "The user sounds pleased. Match their upbeat tone."
	}
	return ""
}
