package speech

import (
	"context"
	"sync"

	"github.com/vaanilabs/vaani-core/core/generation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Utterance is one unit of text handed to the engine to vocalize, with the
// voice already resolved for its locale.
type Utterance struct {
	Text   string
	Locale string
	Voice  Voice
}

// Engine vocalizes a single utterance, blocking until playback finishes or
// the context is cancelled.
type Engine interface {
	Speak(ctx context.Context, utterance Utterance) error
}

// Synthesizer serializes arbitrary-length text into a FIFO queue of
// sentence-sized utterances and drains it strictly sequentially: one
// utterance finishes (or errors) before the next begins.
//
// Voices are resolved when an utterance is dequeued, not when it is
// enqueued, so a catalog that fills in asynchronously is picked up without
// any explicit refresh. An utterance that resolves to no voice at all is
// skipped silently.
type Synthesizer struct {
	engine  Engine
	catalog Catalog

	preferredNames  map[string]string
	preferredGender Gender

	callbacks callbacks

	mu            sync.Mutex
	queue         []pendingUtterance
	draining      bool
	speaking      bool
	cancelCurrent context.CancelFunc
}

type pendingUtterance struct {
	text   string
	locale string
}

func NewSynthesizer(engine Engine, catalog Catalog, opts ...Option) *Synthesizer {
	synthesizer := &Synthesizer{
		engine:          engine,
		catalog:         catalog,
		preferredNames:  map[string]string{},
		preferredGender: GenderFemale,
		callbacks:       newCallbacks(),
	}

	for _, opt := range opts {
		opt(synthesizer)
	}

	return synthesizer
}

// Speak splits the text into sentence-sized chunks and enqueues them. Each
// chunk keeps its own inferred locale unless one is forced here; pass an
// empty locale to infer per chunk.
func (s *Synthesizer) Speak(text string, locale string) {
	if s == nil {
		return
	}

	chunks := generation.SplitSentences(text)
	if len(chunks) == 0 {
		return
	}

	s.mu.Lock()
	for _, chunk := range chunks {
		chunkLocale := locale
		if chunkLocale == "" {
			chunkLocale = chunk.Locale
		}
		s.queue = append(s.queue, pendingUtterance{text: chunk.Text, locale: chunkLocale})
	}
	if !s.draining {
		s.draining = true
		go s.drain()
	}
	s.mu.Unlock()
}

// Stop clears the queue and halts the in-progress utterance immediately.
// Safe to call repeatedly and while idle.
func (s *Synthesizer) Stop() {
	if s == nil {
		return
	}

	s.mu.Lock()
	s.queue = nil
	cancel := s.cancelCurrent
	s.cancelCurrent = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// IsSpeaking reports whether an utterance is currently being vocalized or
// waiting in the queue.
func (s *Synthesizer) IsSpeaking() bool {
	if s == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking || len(s.queue) > 0
}

func (s *Synthesizer) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.speaking = false
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue = s.queue[1:]

		ctx, cancel := context.WithCancel(context.Background())
		s.cancelCurrent = cancel
		s.speaking = true
		s.mu.Unlock()

		s.speakOne(ctx, next)

		s.mu.Lock()
		if s.cancelCurrent != nil {
			s.cancelCurrent = nil
		}
		s.mu.Unlock()
		cancel()
	}
}

func (s *Synthesizer) speakOne(ctx context.Context, pending pendingUtterance) {
	ctx, span := tracer.Start(ctx, "speak utterance")
	defer span.End()
	span.SetAttributes(attribute.String("utterance.locale", pending.locale))

	voice, ok := ResolveVoice(s.catalog.Voices(), pending.locale, Preference{
		Name:   s.preferredNames[primarySubtag(pending.locale)],
		Gender: s.preferredGender,
	})
	if !ok {
		span.AddEvent("no voice available, skipped")
		logger.Warn("No voice available, skipping utterance", "locale", pending.locale)
		return
	}

	utterance := Utterance{Text: pending.text, Locale: pending.locale, Voice: voice}
	s.callbacks.speechStarted(utterance)
	defer s.callbacks.speechEnded(utterance)

	if err := s.engine.Speak(ctx, utterance); err != nil {
		if ctx.Err() != nil {
			span.AddEvent("utterance cancelled")
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.callbacks.errored(err)
	}
}
