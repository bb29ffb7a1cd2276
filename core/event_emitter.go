package conversation

import (
	"github.com/vaanilabs/vaani-core/core/events"
	"github.com/vaanilabs/vaani-core/core/generation"
)

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

// newCallbackEventEmitter maps the typed event stream onto the per-session
// named callbacks.
func newCallbackEventEmitter(opts ListenOptions) eventEmitter {
	return func(event events.Event) {
		if opts.onEvent != nil {
			opts.onEvent(event)
		}

		switch typedEvent := event.(type) {
		case events.UserSpeechStarted:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(true)
			}
		case events.UserSpeechEnded:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(false)
			}
		case events.UserTranscriptInterimUpdated:
			if opts.onInterimTranscription != nil {
				opts.onInterimTranscription(typedEvent.Transcript)
			}
		case events.UserTranscriptFinal:
			if opts.onTranscription != nil {
				opts.onTranscription(typedEvent.Transcript)
			}
		case events.ResponseFragment:
			if opts.onResponseFragment != nil {
				opts.onResponseFragment(generation.Fragment{
					Text:   typedEvent.Text,
					Locale: typedEvent.Locale,
				})
			}
		case events.ResponseComplete:
			if opts.onResponseEnd != nil {
				opts.onResponseEnd(typedEvent.Text)
			}
		case events.ResponseFailed:
			if opts.onError != nil {
				opts.onError(typedEvent.Err)
			}
		case events.TurnFailed:
			if opts.onError != nil {
				opts.onError(typedEvent.Err)
			}
		}
	}
}
