package recognition

import "github.com/vaanilabs/vaani-core/core/audio"

// TranscriptionOptions collects the callbacks a transcription engine invokes
// as results arrive. Unset callbacks disable the corresponding engine feature
// where the wire protocol allows it.
type TranscriptionOptions struct {
	InterimTranscriptionCallback func(transcript string)
	TranscriptionCallback        func(transcript string, confidence float64)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	// ClosedCallback fires once when the engine's connection ends, with a
	// nil error on clean shutdown.
	ClosedCallback func(err error)

	EncodingInfo audio.EncodingInfo
	Locale       string
}

type TranscriptionOption func(*TranscriptionOptions)

func WithInterimTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.InterimTranscriptionCallback = callback
	}
}

func WithTranscriptionCallback(callback func(transcript string, confidence float64)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptionCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithClosedCallback(callback func(err error)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.ClosedCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}

func WithLocale(locale string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.Locale = locale
	}
}
