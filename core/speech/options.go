package speech

// Option configures a Synthesizer at construction time.
type Option func(*Synthesizer)

// WithPreferredVoice pins an exact voice name for a locale's primary
// language subtag.
func WithPreferredVoice(locale, name string) Option {
	return func(s *Synthesizer) {
		s.preferredNames[primarySubtag(locale)] = name
	}
}

// WithPreferredGender steers the heuristic tier of voice resolution.
func WithPreferredGender(gender Gender) Option {
	return func(s *Synthesizer) {
		s.preferredGender = gender
	}
}

func WithSpeechStartedCallback(callback func(utterance Utterance)) Option {
	return func(s *Synthesizer) {
		s.callbacks.speechStarted = callback
	}
}

func WithSpeechEndedCallback(callback func(utterance Utterance)) Option {
	return func(s *Synthesizer) {
		s.callbacks.speechEnded = callback
	}
}

func WithErrorCallback(callback func(err error)) Option {
	return func(s *Synthesizer) {
		s.callbacks.errored = callback
	}
}

type callbacks struct {
	speechStarted func(utterance Utterance)
	speechEnded   func(utterance Utterance)
	errored       func(err error)
}

func newCallbacks() callbacks {
	return callbacks{
		speechStarted: func(Utterance) {},
		speechEnded:   func(Utterance) {},
		errored:       func(error) {},
	}
}
