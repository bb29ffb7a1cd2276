package deepgram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vaanilabs/vaani-core/core/recognition"
)

func TestNewCallbackConfigDefaultsToNoopCallbacks(t *testing.T) {
	callbacks, wsConfig := newCallbackConfig(recognition.TranscriptionOptions{})

	callbacks.interimTranscriptionCallback("interim")
	callbacks.transcriptionCallback("full", 0.9)
	callbacks.startSpeechCallback()
	callbacks.endSpeechCallback()
	callbacks.closedCallback(nil)

	if wsConfig.shouldDetectSpeechStart {
		t.Fatalf("expected speech-start detection disabled when callback is unset")
	}
	if wsConfig.shouldEnhanceSpeechEndingDetection {
		t.Fatalf("expected speech-end enhancement disabled when callbacks are unset")
	}
	if wsConfig.shouldRequestInterimResults {
		t.Fatalf("expected interim-results disabled when callbacks are unset")
	}
}

func TestNewCallbackConfigKeepsConfiguredCallbacksAndFlags(t *testing.T) {
	interimCalls := atomic.Int32{}
	transcriptionCalls := atomic.Int32{}
	startCalls := atomic.Int32{}
	endCalls := atomic.Int32{}
	closedCalls := atomic.Int32{}

	callbacks, wsConfig := newCallbackConfig(recognition.TranscriptionOptions{
		InterimTranscriptionCallback: func(string) { interimCalls.Add(1) },
		TranscriptionCallback:        func(string, float64) { transcriptionCalls.Add(1) },
		SpeechStartedCallback:        func() { startCalls.Add(1) },
		SpeechEndedCallback:          func() { endCalls.Add(1) },
		ClosedCallback:               func(error) { closedCalls.Add(1) },
	})

	callbacks.interimTranscriptionCallback("hello")
	callbacks.transcriptionCallback("hello world", 0.95)
	callbacks.startSpeechCallback()
	callbacks.endSpeechCallback()
	callbacks.closedCallback(nil)

	if !wsConfig.shouldDetectSpeechStart {
		t.Fatalf("expected speech-start detection enabled")
	}
	if !wsConfig.shouldEnhanceSpeechEndingDetection {
		t.Fatalf("expected speech-end enhancement enabled")
	}
	if !wsConfig.shouldRequestInterimResults {
		t.Fatalf("expected interim-results enabled")
	}

	if got := interimCalls.Load(); got != 1 {
		t.Fatalf("expected interim callback once, got %d", got)
	}
	if got := transcriptionCalls.Load(); got != 1 {
		t.Fatalf("expected transcription callback once, got %d", got)
	}
	if got := startCalls.Load(); got != 1 {
		t.Fatalf("expected speech-start callback once, got %d", got)
	}
	if got := endCalls.Load(); got != 1 {
		t.Fatalf("expected speech-end callback once, got %d", got)
	}
	if got := closedCalls.Load(); got != 1 {
		t.Fatalf("expected closed callback once, got %d", got)
	}
}

func TestStreamDropClearsConnectionForWriters(t *testing.T) {
	upgrader := websocket.Upgrader{}
	accepted := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade connection: %v", err)
			return
		}
		accepted <- conn
	}))
	defer server.Close()

	closed := make(chan error, 1)
	client := NewTranscriptionClient("test-key",
		WithListenURL("ws"+strings.TrimPrefix(server.URL, "http")))
	err := client.Transcribe(context.Background(),
		recognition.WithClosedCallback(func(err error) { closed <- err }))
	if err != nil {
		t.Fatalf("unexpected transcribe error: %v", err)
	}

	if err := client.SendAudio([]byte{0x00, 0x01}); err != nil {
		t.Fatalf("expected writes to succeed while the stream is open, got %v", err)
	}

	(<-accepted).Close()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the closed callback")
	}

	if err := client.SendAudio([]byte{0x00, 0x01}); err == nil {
		t.Fatalf("expected writes to fail once the stream dropped")
	}
}

func TestProcessMessageAccumulatesFinalsAndWeakestConfidence(t *testing.T) {
	client := NewTranscriptionClient("test-key")
	client.accumulatedConfidence = 1

	var gotTranscript string
	var gotConfidence float64
	callbacks, _ := newCallbackConfig(recognition.TranscriptionOptions{
		TranscriptionCallback: func(transcript string, confidence float64) {
			gotTranscript = transcript
			gotConfidence = confidence
		},
	})

	client.processMessage([]byte(`{"type":"Results","is_final":true,"speech_final":false,
		"channel":{"alternatives":[{"transcript":"hello","confidence":0.98}]}}`), callbacks)
	client.processMessage([]byte(`{"type":"Results","is_final":true,"speech_final":true,
		"channel":{"alternatives":[{"transcript":"world","confidence":0.62}]}}`), callbacks)

	if gotTranscript != "hello world" {
		t.Fatalf("expected accumulated transcript %q, got %q", "hello world", gotTranscript)
	}
	if gotConfidence != 0.62 {
		t.Fatalf("expected weakest segment confidence 0.62, got %v", gotConfidence)
	}
}

func TestProcessMessageInterimIncludesAccumulatedFinals(t *testing.T) {
	client := NewTranscriptionClient("test-key")
	client.accumulatedConfidence = 1

	var gotInterim string
	callbacks, _ := newCallbackConfig(recognition.TranscriptionOptions{
		InterimTranscriptionCallback: func(transcript string) { gotInterim = transcript },
	})

	client.processMessage([]byte(`{"type":"Results","is_final":true,"speech_final":false,
		"channel":{"alternatives":[{"transcript":"hello","confidence":0.9}]}}`), callbacks)
	client.processMessage([]byte(`{"type":"Results","is_final":false,
		"channel":{"alternatives":[{"transcript":"wor","confidence":0.5}]}}`), callbacks)

	if gotInterim != "hello wor" {
		t.Fatalf("expected interim to include accumulated finals, got %q", gotInterim)
	}
}

func TestProcessMessageUtteranceEndFlushesUnendedSegment(t *testing.T) {
	client := NewTranscriptionClient("test-key")
	client.accumulatedConfidence = 1

	endCalls := atomic.Int32{}
	callbacks, _ := newCallbackConfig(recognition.TranscriptionOptions{
		SpeechStartedCallback: func() {},
		SpeechEndedCallback:   func() { endCalls.Add(1) },
	})

	client.processMessage([]byte(`{"type":"SpeechStarted"}`), callbacks)
	client.processMessage([]byte(`{"type":"UtteranceEnd"}`), callbacks)
	client.processMessage([]byte(`{"type":"UtteranceEnd"}`), callbacks)

	if got := endCalls.Load(); got != 1 {
		t.Fatalf("expected a single speech-end for the segment, got %d", got)
	}
}
