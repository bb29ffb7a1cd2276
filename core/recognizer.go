package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/vaanilabs/vaani-core/core/audio"
	"github.com/vaanilabs/vaani-core/core/recognition"
)

// recognizerCallbacks is the deduplicated, confidence-gated view of the
// underlying engine's output.
type recognizerCallbacks struct {
	onInterim func(transcript string)
	// onFinal drives a turn; duplicates and low-confidence finals never
	// reach it.
	onFinal func(transcript string)
	// onSuppressedFinal receives finals gated out by the confidence
	// threshold; they still belong in the visible transcript.
	onSuppressedFinal func(transcript string)
	onSpeechStarted   func()
	onSpeechEnded     func()
	// onStopped fires when the restart budget is exhausted and listening
	// ends with a surfaced error.
	onStopped func(err error)
}

// recognizer wraps a Transcriber with the continuous-listening loop: it
// restarts the engine on natural stream ends, retries recoverable errors
// with linear backoff up to a cap, deduplicates consecutive identical
// finals, and applies confidence gating.
type recognizer struct {
	engine Transcriber

	confidenceThreshold float64
	maxRestarts         int
	restartDelay        time.Duration

	mu        sync.Mutex
	listening bool
	restarts  int
	lastFinal string
}

func newRecognizer() recognizer {
	return recognizer{
		maxRestarts:  3,
		restartDelay: 250 * time.Millisecond,
	}
}

func (r *recognizer) start(ctx context.Context, callbacks recognizerCallbacks, encoding audio.EncodingInfo, locale string) error {
	r.mu.Lock()
	if r.engine == nil || r.listening {
		r.mu.Unlock()
		return nil
	}
	r.listening = true
	r.restarts = 0
	r.lastFinal = ""
	r.mu.Unlock()

	return r.transcribe(ctx, callbacks, encoding, locale)
}

func (r *recognizer) transcribe(ctx context.Context, callbacks recognizerCallbacks, encoding audio.EncodingInfo, locale string) error {
	opts := []recognition.TranscriptionOption{
		recognition.WithEncodingInfo(encoding),
		recognition.WithLocale(locale),
		recognition.WithTranscriptionCallback(func(transcript string, confidence float64) {
			r.handleFinal(transcript, confidence, callbacks)
		}),
		recognition.WithClosedCallback(func(err error) {
			r.handleClosed(ctx, err, callbacks, encoding, locale)
		}),
	}
	if callbacks.onInterim != nil {
		opts = append(opts, recognition.WithInterimTranscriptionCallback(callbacks.onInterim))
	}
	if callbacks.onSpeechStarted != nil {
		opts = append(opts, recognition.WithSpeechStartedCallback(callbacks.onSpeechStarted))
	}
	if callbacks.onSpeechEnded != nil {
		opts = append(opts, recognition.WithSpeechEndedCallback(callbacks.onSpeechEnded))
	}

	return r.engine.Transcribe(ctx, opts...)
}

func (r *recognizer) handleFinal(transcript string, confidence float64, callbacks recognizerCallbacks) {
	r.mu.Lock()
	if !r.listening {
		r.mu.Unlock()
		return
	}
	if transcript == r.lastFinal {
		// Engines occasionally fire the same final twice.
		r.mu.Unlock()
		return
	}
	r.restarts = 0
	gated := r.confidenceThreshold > 0 && confidence < r.confidenceThreshold
	if !gated {
		// Gated finals never reach dedup state: a confident repetition of
		// the same words must still drive a turn.
		r.lastFinal = transcript
	}
	r.mu.Unlock()

	if gated {
		logger.Info("Final transcript below confidence threshold, not driving a turn",
			"confidence", confidence)
		if callbacks.onSuppressedFinal != nil {
			callbacks.onSuppressedFinal(transcript)
		}
		return
	}

	if callbacks.onFinal != nil {
		callbacks.onFinal(transcript)
	}
}

func (r *recognizer) handleClosed(ctx context.Context, err error, callbacks recognizerCallbacks, encoding audio.EncodingInfo, locale string) {
	r.mu.Lock()
	if !r.listening || ctx.Err() != nil {
		r.mu.Unlock()
		return
	}

	attempt := 0
	if err != nil {
		r.restarts++
		attempt = r.restarts
		if r.restarts > r.maxRestarts {
			r.listening = false
			r.mu.Unlock()
			if callbacks.onStopped != nil {
				callbacks.onStopped(err)
			}
			return
		}
	}
	r.mu.Unlock()

	if attempt > 0 {
		logger.Warn("Recognition stream dropped, restarting", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.restartDelay * time.Duration(attempt)):
		}
	}

	if restartErr := r.transcribe(ctx, callbacks, encoding, locale); restartErr != nil {
		r.handleClosed(ctx, restartErr, callbacks, encoding, locale)
	}
}

func (r *recognizer) isListening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listening
}

func (r *recognizer) sendAudio(audio []byte) error {
	r.mu.Lock()
	engine := r.engine
	listening := r.listening
	r.mu.Unlock()

	if engine == nil || !listening {
		return nil
	}
	return engine.SendAudio(audio)
}

// stop ends listening immediately. Idempotent; the closed callback from the
// engine is ignored once listening is off.
func (r *recognizer) stop() {
	r.mu.Lock()
	if !r.listening {
		r.mu.Unlock()
		return
	}
	r.listening = false
	r.lastFinal = ""
	engine := r.engine
	r.mu.Unlock()

	if engine != nil {
		if err := engine.StopStream(); err != nil {
			logger.Warn("Failed to stop recognition stream", "error", err)
		}
	}
}
