package conversation

import (
	"context"
	"time"

	"github.com/vaanilabs/vaani-core/core/audio"
	"github.com/vaanilabs/vaani-core/core/events"
	"github.com/vaanilabs/vaani-core/core/generation"
	"github.com/vaanilabs/vaani-core/core/recognition"
)

type Option func(*Conversation)

// Generator issues cancellable generation requests. Starting a new request
// must cancel the previous one; cancelled streams stay silent.
type Generator interface {
	Generate(ctx context.Context, prompt string) generation.Stream
	Cancel()
}

func WithGenerator(client Generator) Option {
	return func(c *Conversation) { c.generator = client }
}

// Transcriber is a continuous speech-to-text engine.
type Transcriber interface {
	Transcribe(ctx context.Context, opts ...recognition.TranscriptionOption) error
	SendAudio(audio []byte) error
	StopStream() error
}

func WithTranscriber(client Transcriber) Option {
	return func(c *Conversation) { c.recognizer.engine = client }
}

// Speaker vocalizes text through a FIFO utterance queue.
type Speaker interface {
	Speak(text string, locale string)
	Stop()
	IsSpeaking() bool
}

func WithSpeaker(client Speaker) Option {
	return func(c *Conversation) { c.speaker = client }
}

// AudioInput owns the microphone device.
type AudioInput interface {
	RequestAccess(ctx context.Context) error
	Start(onAudio func(audio []byte)) error
	Stop() error
	Close() error
	EncodingInfo() audio.EncodingInfo
}

func WithAudioInput(client AudioInput) Option {
	return func(c *Conversation) { c.audioInput = client }
}

func WithSystemPrompt(prompt string) Option {
	return func(c *Conversation) { c.systemPrompt = prompt }
}

func WithPersona(persona string) Option {
	return func(c *Conversation) { c.persona = persona }
}

func WithHistory(history *History) Option {
	return func(c *Conversation) {
		if history != nil {
			c.history = history
		}
	}
}

// WithGenerationRetries caps how many additional attempts follow a failed
// generation before the turn gives up.
func WithGenerationRetries(retries int) Option {
	return func(c *Conversation) {
		if retries >= 0 {
			c.maxRetries = retries
		}
	}
}

// WithRetryBaseDelay sets the unit of the linear backoff between generation
// attempts (delay = base delay times the attempt number).
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(c *Conversation) { c.retryBaseDelay = delay }
}

// WithConfidenceThreshold suppresses final transcripts below the threshold
// from driving a turn; they still update the visible transcript.
func WithConfidenceThreshold(threshold float64) Option {
	return func(c *Conversation) { c.recognizer.confidenceThreshold = threshold }
}

// WithRecognizerRestarts caps automatic recognizer restarts after recoverable
// engine errors.
func WithRecognizerRestarts(restarts int) Option {
	return func(c *Conversation) {
		if restarts >= 0 {
			c.recognizer.maxRestarts = restarts
		}
	}
}

// WithRecognizerRestartDelay sets the unit of the linear backoff between
// recognizer restarts.
func WithRecognizerRestartDelay(delay time.Duration) Option {
	return func(c *Conversation) { c.recognizer.restartDelay = delay }
}

// ListenOptions collects the per-session callbacks, mapped from the typed
// event stream.
type ListenOptions struct {
	onTranscription        func(transcript string)
	onInterimTranscription func(transcript string)
	onSpeakingStateChanged func(isSpeaking bool)
	onResponseFragment     func(fragment generation.Fragment)
	onResponseEnd          func(response string)
	onTurnStateChanged     func(state TurnState)
	onError                func(err error)
	onInputAudio           func(audio []byte)
	onEvent                func(event events.Event)
}

type ListenOption func(*ListenOptions)

// WithTranscriptionCallback registers a callback for finalized transcripts
// that were accepted to drive a turn.
func WithTranscriptionCallback(callback func(transcript string)) ListenOption {
	return func(o *ListenOptions) { o.onTranscription = callback }
}

// WithInterimTranscriptionCallback registers a callback for mutable interim
// transcript snapshots, including low-confidence finals that were suppressed
// from driving a turn.
func WithInterimTranscriptionCallback(callback func(transcript string)) ListenOption {
	return func(o *ListenOptions) { o.onInterimTranscription = callback }
}

func WithSpeakingStateChangedCallback(callback func(isSpeaking bool)) ListenOption {
	return func(o *ListenOptions) { o.onSpeakingStateChanged = callback }
}

// WithResponseFragmentCallback registers a callback for streamed reply
// fragments in emission order.
func WithResponseFragmentCallback(callback func(fragment generation.Fragment)) ListenOption {
	return func(o *ListenOptions) { o.onResponseFragment = callback }
}

func WithResponseEndCallback(callback func(response string)) ListenOption {
	return func(o *ListenOptions) { o.onResponseEnd = callback }
}

func WithTurnStateChangedCallback(callback func(state TurnState)) ListenOption {
	return func(o *ListenOptions) { o.onTurnStateChanged = callback }
}

// WithErrorCallback registers a callback for surfaced, non-fatal errors.
// Cancellations are never reported here.
func WithErrorCallback(callback func(err error)) ListenOption {
	return func(o *ListenOptions) { o.onError = callback }
}

// WithInputAudioCallback registers a callback for raw input audio chunks.
// The slice is passed through without a defensive copy; the callback runs on
// the input-audio path and should not block.
func WithInputAudioCallback(callback func(audio []byte)) ListenOption {
	return func(o *ListenOptions) { o.onInputAudio = callback }
}

// WithEventCallback registers a callback for the raw typed event stream, in
// addition to any named callbacks.
func WithEventCallback(callback func(event events.Event)) ListenOption {
	return func(o *ListenOptions) { o.onEvent = callback }
}
