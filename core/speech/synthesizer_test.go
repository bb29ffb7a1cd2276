package speech

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubEngine struct {
	mu      sync.Mutex
	spoken  []Utterance
	active  atomic.Int32
	overlap atomic.Bool

	block   chan struct{}
	done    chan Utterance
	started chan Utterance
}

func newStubEngine() *stubEngine {
	return &stubEngine{
		done:    make(chan Utterance, 16),
		started: make(chan Utterance, 16),
	}
}

func (e *stubEngine) Speak(ctx context.Context, utterance Utterance) error {
	if e.active.Add(1) > 1 {
		e.overlap.Store(true)
	}
	defer e.active.Add(-1)
	e.started <- utterance

	if e.block != nil {
		select {
		case <-e.block:
		case <-ctx.Done():
			e.done <- utterance
			return ctx.Err()
		}
	}

	e.mu.Lock()
	e.spoken = append(e.spoken, utterance)
	e.mu.Unlock()
	e.done <- utterance
	return nil
}

func (e *stubEngine) spokenTexts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	texts := make([]string, 0, len(e.spoken))
	for _, utterance := range e.spoken {
		texts = append(texts, utterance.Text)
	}
	return texts
}

type stubCatalog struct {
	mu     sync.Mutex
	voices []Voice
}

func (c *stubCatalog) Voices() []Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voices
}

func (c *stubCatalog) setVoices(voices []Voice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voices = voices
}

func waitForUtterances(t *testing.T, engine *stubEngine, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		select {
		case <-engine.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for utterance %d of %d", i+1, count)
		}
	}
}

func waitForIdle(t *testing.T, synthesizer *Synthesizer) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for synthesizer.IsSpeaking() {
		if time.Now().After(deadline) {
			t.Fatalf("synthesizer did not settle to idle")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSpeakDrainsQueueSequentially(t *testing.T) {
	engine := newStubEngine()
	catalog := &stubCatalog{voices: []Voice{{Name: "Aria", Locale: "en-US", Gender: GenderFemale}}}
	synthesizer := NewSynthesizer(engine, catalog)

	synthesizer.Speak("One. Two. Three.", "")
	waitForUtterances(t, engine, 3)
	waitForIdle(t, synthesizer)

	got := engine.spokenTexts()
	expected := []string{"One.", "Two.", "Three."}
	if len(got) != len(expected) {
		t.Fatalf("expected %d utterances, got %v", len(expected), got)
	}
	for i, want := range expected {
		if got[i] != want {
			t.Fatalf("utterance %d: expected %q, got %q", i, want, got[i])
		}
	}
	if engine.overlap.Load() {
		t.Fatalf("utterances overlapped; queue must drain one at a time")
	}
}

func TestStopClearsQueueAndHaltsCurrentUtterance(t *testing.T) {
	engine := newStubEngine()
	engine.block = make(chan struct{})
	catalog := &stubCatalog{voices: []Voice{{Name: "Aria", Locale: "en-US", Gender: GenderFemale}}}
	synthesizer := NewSynthesizer(engine, catalog)

	synthesizer.Speak("One. Two. Three.", "")

	select {
	case <-engine.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the first utterance to start")
	}

	// The first utterance is now blocked inside the engine.
	synthesizer.Stop()
	waitForUtterances(t, engine, 1)
	waitForIdle(t, synthesizer)

	if got := engine.spokenTexts(); len(got) != 0 {
		t.Fatalf("expected no completed utterances after stop, got %v", got)
	}

	// Repeated stops are harmless.
	synthesizer.Stop()
	synthesizer.Stop()
}

func TestSpeakSkipsSilentlyUntilVoicesLoad(t *testing.T) {
	engine := newStubEngine()
	catalog := &stubCatalog{}
	synthesizer := NewSynthesizer(engine, catalog)

	synthesizer.Speak("Hello.", "")
	waitForIdle(t, synthesizer)

	if got := engine.spokenTexts(); len(got) != 0 {
		t.Fatalf("expected silent skip with an empty catalog, got %v", got)
	}

	catalog.setVoices([]Voice{{Name: "Aria", Locale: "en-US", Gender: GenderFemale}})
	synthesizer.Speak("Hello again.", "")
	waitForUtterances(t, engine, 1)

	if got := engine.spokenTexts(); len(got) != 1 || got[0] != "Hello again." {
		t.Fatalf("expected the utterance after voices loaded, got %v", got)
	}
}

func TestSpeakResolvesVoicePerChunkLocale(t *testing.T) {
	engine := newStubEngine()
	catalog := &stubCatalog{voices: []Voice{
		{Name: "Aria", Locale: "en-US", Gender: GenderFemale},
		{Name: "Kalpana", Locale: "hi-IN", Gender: GenderFemale},
	}}
	synthesizer := NewSynthesizer(engine, catalog)

	synthesizer.Speak("Hello there. नमस्ते।", "")
	waitForUtterances(t, engine, 2)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.spoken) != 2 {
		t.Fatalf("expected 2 utterances, got %d", len(engine.spoken))
	}
	if engine.spoken[0].Voice.Name != "Aria" {
		t.Fatalf("expected english voice for latin chunk, got %q", engine.spoken[0].Voice.Name)
	}
	if engine.spoken[1].Voice.Name != "Kalpana" {
		t.Fatalf("expected hindi voice for devanagari chunk, got %q", engine.spoken[1].Voice.Name)
	}
}

func TestResolveVoicePreferenceTiers(t *testing.T) {
	voices := []Voice{
		{Name: "Ravi", Locale: "hi-IN", Gender: GenderMale},
		{Name: "Kalpana", Locale: "hi-IN", Gender: GenderFemale},
		{Name: "Aria", Locale: "en-US", Gender: GenderFemale},
	}

	testCases := []struct {
		name       string
		locale     string
		preference Preference
		expected   string
	}{
		{name: "exact name wins", locale: "hi-IN", preference: Preference{Name: "Ravi", Gender: GenderFemale}, expected: "Ravi"},
		{name: "gendered locale heuristic", locale: "hi-IN", preference: Preference{Gender: GenderFemale}, expected: "Kalpana"},
		{name: "locale prefix match", locale: "en-GB", preference: Preference{}, expected: "Aria"},
		{name: "any voice fallback", locale: "fr-FR", preference: Preference{}, expected: "Ravi"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			voice, ok := ResolveVoice(voices, testCase.locale, testCase.preference)
			if !ok {
				t.Fatalf("expected a voice to resolve")
			}
			if voice.Name != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, voice.Name)
			}
		})
	}

	if _, ok := ResolveVoice(nil, "en-US", Preference{}); ok {
		t.Fatalf("expected no voice from an empty catalog")
	}
}
