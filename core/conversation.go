package conversation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vaanilabs/vaani-core/core/audio"
	"github.com/vaanilabs/vaani-core/core/events"
	"github.com/vaanilabs/vaani-core/core/generation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Conversation is the turn controller: it accepts one finalized utterance at
// a time, owns the turn lifecycle, and cancels in-flight work on new input
// or explicit stop.
type Conversation struct {
	generator  Generator
	recognizer recognizer
	speaker    Speaker
	audioInput AudioInput

	systemPrompt string
	persona      string
	locale       string
	history      *History

	maxRetries     int
	retryBaseDelay time.Duration

	emit               eventEmitter
	onTurnStateChanged func(state TurnState)
	onInputAudio       func(audio []byte)

	baseContext context.Context
	closeOnce   sync.Once

	// processing gates turn entry: while true, new finalized transcripts
	// are dropped rather than queued.
	processing atomic.Bool

	stateMu sync.Mutex
	state   TurnState

	turnMu     sync.Mutex
	cancelTurn context.CancelFunc
}

func NewConversation(opts ...Option) *Conversation {
	conversation := &Conversation{
		recognizer:     newRecognizer(),
		history:        NewHistory(),
		locale:         generation.LocaleDefault,
		maxRetries:     2,
		retryBaseDelay: 500 * time.Millisecond,
		emit:           noopEventEmitter,
		baseContext:    context.Background(),
		state:          TurnStateIdle,
	}

	for _, opt := range opts {
		opt(conversation)
	}

	return conversation
}

// WithRecognitionLocale sets the language tag requested from the speech
// recognition engine.
func WithRecognitionLocale(locale string) Option {
	return func(c *Conversation) {
		if locale != "" {
			c.locale = locale
		}
	}
}

// Start begins listening: it acquires the audio input (when one is wired),
// starts continuous recognition, and registers the per-session callbacks.
// Call at most once per Conversation.
func (c *Conversation) Start(ctx context.Context, opts ...ListenOption) error {
	listenOptions := ListenOptions{}
	for _, opt := range opts {
		opt(&listenOptions)
	}

	c.emit = newCallbackEventEmitter(listenOptions)
	c.onTurnStateChanged = listenOptions.onTurnStateChanged
	c.onInputAudio = listenOptions.onInputAudio
	c.baseContext = ctx

	encoding := audio.GetDefaultEncodingInfo()
	if c.audioInput != nil {
		encoding = c.audioInput.EncodingInfo()
	}

	err := c.recognizer.start(ctx, recognizerCallbacks{
		onInterim: func(transcript string) {
			c.emit(events.NewUserTranscriptInterimUpdated(transcript))
		},
		onFinal: func(transcript string) {
			c.emit(events.NewUserTranscriptFinal(transcript))
			c.OnFinalTranscript(transcript)
		},
		onSuppressedFinal: func(transcript string) {
			c.emit(events.NewUserTranscriptInterimUpdated(transcript))
		},
		onSpeechStarted: func() { c.emit(events.NewUserSpeechStarted()) },
		onSpeechEnded:   func() { c.emit(events.NewUserSpeechEnded()) },
		onStopped: func(err error) {
			c.setState(TurnStateIdle)
			if listenOptions.onError != nil {
				listenOptions.onError(err)
			}
		},
	}, encoding, c.locale)
	if err != nil {
		return err
	}

	if c.audioInput != nil {
		if err := c.audioInput.RequestAccess(ctx); err != nil {
			return err
		}
		if err := c.audioInput.Start(func(chunk []byte) {
			if c.onInputAudio != nil {
				c.onInputAudio(chunk)
			}
			if err := c.recognizer.sendAudio(chunk); err != nil {
				logger.Warn("Failed to forward captured audio", "error", err)
			}
		}); err != nil {
			return err
		}
	}

	c.setState(TurnStateListening)
	return nil
}

// OnFinalTranscript is the single entry point driving a turn. While a turn
// is active new input is dropped, not queued.
func (c *Conversation) OnFinalTranscript(transcript string) {
	if transcript == "" || c.generator == nil {
		return
	}
	if !c.processing.CompareAndSwap(false, true) {
		logger.Info("Turn already active, dropping finalized transcript")
		return
	}

	go c.runTurn(c.baseContext, transcript)
}

// SubmitText drives a turn from typed input, bypassing recognition.
func (c *Conversation) SubmitText(text string) {
	c.OnFinalTranscript(text)
}

// Cancel aborts the active generation, stops the synthesizer, and resets
// flags without touching history. Idempotent.
func (c *Conversation) Cancel() {
	c.turnMu.Lock()
	cancel := c.cancelTurn
	c.cancelTurn = nil
	c.turnMu.Unlock()

	if c.generator != nil {
		c.generator.Cancel()
	}
	if c.speaker != nil {
		c.speaker.Stop()
	}
	if cancel != nil {
		cancel()
	}
}

// Close stops listening and releases the audio input. Safe to call more
// than once.
func (c *Conversation) Close() {
	c.closeOnce.Do(func() {
		c.Cancel()
		c.recognizer.stop()
		if c.audioInput != nil {
			if err := c.audioInput.Stop(); err != nil {
				logger.Warn("Failed to stop audio input", "error", err)
			}
			if err := c.audioInput.Close(); err != nil {
				logger.Warn("Failed to close audio input", "error", err)
			}
		}
		c.setState(TurnStateIdle)
	})
}

func (c *Conversation) State() TurnState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Conversation) History() []Utterance {
	return c.history.Entries()
}

func (c *Conversation) setState(state TurnState) {
	c.stateMu.Lock()
	changed := c.state != state
	c.state = state
	c.stateMu.Unlock()

	if changed && c.onTurnStateChanged != nil {
		c.onTurnStateChanged(state)
	}
}

// settle returns the state the controller rests in between turns.
func (c *Conversation) settle() {
	if c.recognizer.isListening() {
		c.setState(TurnStateListening)
	} else {
		c.setState(TurnStateIdle)
	}
}

func (c *Conversation) runTurn(ctx context.Context, input string) {
	defer c.processing.Store(false)

	// Accepting new input cuts off whatever the previous turn left running,
	// an apology still being spoken included.
	c.generator.Cancel()
	if c.speaker != nil {
		c.speaker.Stop()
	}

	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.turnMu.Lock()
	c.cancelTurn = cancel
	c.turnMu.Unlock()

	turnID := uuid.NewString()
	turnCtx, span := tracer.Start(turnCtx, "process turn")
	defer span.End()
	span.SetAttributes(attribute.String("turn.id", turnID))

	c.emit(events.NewTurnStarted(turnID))
	c.setState(TurnStateGenerating)

	userUtterance := NewUserUtterance(input)
	priorEntries := c.history.Last(promptHistoryWindow)
	c.history.Append(userUtterance)
	prompt := buildPrompt(c.systemPrompt, c.persona, priorEntries, userUtterance)

	for attempt := 0; ; attempt++ {
		reply, err := c.runGeneration(turnCtx, prompt)
		if turnCtx.Err() != nil {
			span.AddEvent("turn cancelled")
			c.emit(events.NewTurnCancelled(turnID))
			c.settle()
			return
		}

		if err == nil {
			c.history.Append(NewAssistantUtterance(reply))
			c.emit(events.NewResponseComplete(reply))
			c.awaitSpeechEnd(turnCtx)
			c.emit(events.NewTurnCompleted(turnID))
			c.settle()
			return
		}

		class := classifyFailure(err)
		retryable := class != events.FailureConfiguration && attempt < c.maxRetries
		if !retryable {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			apology := apologyFor(generation.DetectLocale(input))
			c.emit(events.NewResponseFragment(apology.Text, apology.Locale))
			if c.speaker != nil {
				c.speaker.Speak(apology.Text, apology.Locale)
			}
			c.emit(events.NewResponseFailed(class, err))
			c.emit(events.NewTurnFailed(turnID, err))
			c.settle()
			return
		}

		delay := c.retryBaseDelay * time.Duration(attempt+1)
		logger.Warn("Generation failed, retrying", "attempt", attempt+1, "delay", delay, "error", err)
		select {
		case <-turnCtx.Done():
		case <-time.After(delay):
		}
	}
}

// runGeneration performs one generation attempt, forwarding fragments to the
// event stream and the synthesizer as they arrive.
func (c *Conversation) runGeneration(ctx context.Context, prompt string) (string, error) {
	stream := c.generator.Generate(ctx, prompt)

	spoke := false
	var streamErr error
	for fragment, err := range stream.Fragments {
		if err != nil {
			streamErr = err
			break
		}
		if ctx.Err() != nil {
			break
		}

		if !spoke {
			spoke = true
			c.setState(TurnStateSpeaking)
			c.emit(events.NewSpeechStarted())
		}
		c.emit(events.NewResponseFragment(fragment.Text, fragment.Locale))
		if c.speaker != nil {
			c.speaker.Speak(fragment.Text, fragment.Locale)
		}
	}

	if streamErr != nil {
		return "", streamErr
	}
	return stream.Text(), nil
}

// awaitSpeechEnd holds the turn in Speaking until the synthesizer drains.
func (c *Conversation) awaitSpeechEnd(ctx context.Context) {
	defer c.emit(events.NewSpeechEnded())
	if c.speaker == nil {
		return
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for c.speaker.IsSpeaking() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func classifyFailure(err error) events.FailureClass {
	switch {
	case errors.Is(err, generation.ErrMissingAPIKey):
		return events.FailureConfiguration
	case errors.Is(err, generation.ErrNoResponse):
		return events.FailureEmptyReply
	default:
		return events.FailureTransport
	}
}
