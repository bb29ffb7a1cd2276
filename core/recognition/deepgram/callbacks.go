package deepgram

import "github.com/vaanilabs/vaani-core/core/recognition"

// callbackConfig is the fully-populated form of the caller's transcription
// options: every callback is safe to invoke without a nil check.
type callbackConfig struct {
	interimTranscriptionCallback func(transcript string)
	transcriptionCallback        func(transcript string, confidence float64)

	startSpeechCallback func()
	endSpeechCallback   func()
	closedCallback      func(err error)
}

// websocketConfig captures which upstream features the connection must
// request for the configured callbacks to ever fire.
type websocketConfig struct {
	shouldDetectSpeechStart            bool
	shouldEnhanceSpeechEndingDetection bool
	shouldRequestInterimResults        bool
}

func newCallbackConfig(options recognition.TranscriptionOptions) (callbackConfig, websocketConfig) {
	callbacks := callbackConfig{
		interimTranscriptionCallback: func(string) {},
		transcriptionCallback:        func(string, float64) {},
		startSpeechCallback:          func() {},
		endSpeechCallback:            func() {},
		closedCallback:               func(error) {},
	}

	wsConfig := websocketConfig{
		shouldDetectSpeechStart: options.SpeechStartedCallback != nil,
		shouldEnhanceSpeechEndingDetection: options.TranscriptionCallback != nil ||
			options.SpeechEndedCallback != nil,
		shouldRequestInterimResults: options.InterimTranscriptionCallback != nil,
	}

	if options.InterimTranscriptionCallback != nil {
		callbacks.interimTranscriptionCallback = options.InterimTranscriptionCallback
	}
	if options.TranscriptionCallback != nil {
		callbacks.transcriptionCallback = options.TranscriptionCallback
	}
	if options.SpeechStartedCallback != nil {
		callbacks.startSpeechCallback = options.SpeechStartedCallback
	}
	if options.SpeechEndedCallback != nil {
		callbacks.endSpeechCallback = options.SpeechEndedCallback
	}
	if options.ClosedCallback != nil {
		callbacks.closedCallback = options.ClosedCallback
	}

	return callbacks, wsConfig
}
