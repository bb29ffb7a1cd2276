package events

// KindSpeechStarted identifies the start of synthesizer playback.
const KindSpeechStarted Kind = "assistant_speech.started"

// SpeechStarted marks the synthesizer starting to drain its queue.
type SpeechStarted struct{ Base }

// NewSpeechStarted creates a speech started event.
func NewSpeechStarted() SpeechStarted {
	return SpeechStarted{Base: NewBase(KindSpeechStarted)}
}

// KindSpeechEnded identifies the end of synthesizer playback.
const KindSpeechEnded Kind = "assistant_speech.ended"

// SpeechEnded marks the synthesizer queue draining or being stopped.
type SpeechEnded struct{ Base }

// NewSpeechEnded creates a speech ended event.
func NewSpeechEnded() SpeechEnded {
	return SpeechEnded{Base: NewBase(KindSpeechEnded)}
}
