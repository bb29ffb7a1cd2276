package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

type bridgeServer struct {
	server *httptest.Server

	mu          sync.Mutex
	dials       int
	conns       []*websocket.Conn
	textFrames  []string
	dropOnFirst bool
}

func newBridgeServer(t *testing.T) *bridgeServer {
	t.Helper()

	bridge := &bridgeServer{}
	bridge.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		bridge.mu.Lock()
		bridge.dials++
		bridge.conns = append(bridge.conns, conn)
		drop := bridge.dropOnFirst && bridge.dials == 1
		bridge.mu.Unlock()

		if drop {
			return
		}

		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}

			text := string(msg)
			bridge.mu.Lock()
			bridge.textFrames = append(bridge.textFrames, text)
			bridge.mu.Unlock()

			if strings.HasPrefix(text, "{") {
				continue // control frame
			}

			// Echo the transcription, then push synthesized audio.
			echo, _ := json.Marshal(map[string]string{"type": "transcription", "text": text})
			if err := conn.WriteMessage(websocket.TextMessage, echo); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02, 0x03}); err != nil {
				return
			}
		}
	}))
	t.Cleanup(bridge.server.Close)

	return bridge
}

func (b *bridgeServer) url() string {
	return "ws" + strings.TrimPrefix(b.server.URL, "http")
}

func (b *bridgeServer) frames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	frames := make([]string, len(b.textFrames))
	copy(frames, b.textFrames)
	return frames
}

func (b *bridgeServer) dialCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

// closeConns severs the upgraded connections directly: the test server's
// Close never touches hijacked sockets.
func (b *bridgeServer) closeConns() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, conn := range b.conns {
		conn.Close()
	}
}

func awaitCondition(t *testing.T, what string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRequestSpeechReceivesAudioAndTranscriptionEcho(t *testing.T) {
	server := newBridgeServer(t)

	var audioFrames atomic.Int32
	var transcriptMu sync.Mutex
	var transcripts []string
	client := NewClient(server.url(),
		WithAudioCallback(func(audio []byte) { audioFrames.Add(1) }),
		WithTranscriptionCallback(func(transcript string) {
			transcriptMu.Lock()
			transcripts = append(transcripts, transcript)
			transcriptMu.Unlock()
		}),
	)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected connect error: %v", err)
	}
	defer client.Disconnect()

	if err := client.RequestSpeech("hello bridge"); err != nil {
		t.Fatalf("unexpected request error: %v", err)
	}

	awaitCondition(t, "audio frame", func() bool { return audioFrames.Load() == 1 })
	awaitCondition(t, "transcription echo", func() bool {
		transcriptMu.Lock()
		defer transcriptMu.Unlock()
		return len(transcripts) == 1 && transcripts[0] == "hello bridge"
	})
}

func TestStopSendsControlFrame(t *testing.T) {
	server := newBridgeServer(t)
	client := NewClient(server.url())

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected connect error: %v", err)
	}
	defer client.Disconnect()

	if err := client.Stop(); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}

	awaitCondition(t, "stop frame", func() bool {
		frames := server.frames()
		return len(frames) == 1 && frames[0] == `{"type":"stop"}`
	})
}

func TestClientReconnectsAfterDrop(t *testing.T) {
	server := newBridgeServer(t)
	server.dropOnFirst = true

	var audioFrames atomic.Int32
	client := NewClient(server.url(),
		WithReconnectBaseDelay(time.Millisecond),
		WithAudioCallback(func(audio []byte) { audioFrames.Add(1) }),
	)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected connect error: %v", err)
	}
	defer client.Disconnect()

	awaitCondition(t, "reconnect", func() bool { return server.dialCount() == 2 })

	if err := client.RequestSpeech("after reconnect"); err != nil {
		t.Fatalf("unexpected request error: %v", err)
	}
	awaitCondition(t, "audio after reconnect", func() bool { return audioFrames.Load() == 1 })
}

func TestReconnectBudgetExhaustionSurfacesError(t *testing.T) {
	server := newBridgeServer(t)

	disconnected := make(chan error, 1)
	client := NewClient(server.url(),
		WithMaxReconnectAttempts(2),
		WithReconnectBaseDelay(time.Millisecond),
		WithDisconnectedCallback(func(err error) { disconnected <- err }),
	)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected connect error: %v", err)
	}

	// Stop the listener so every redial is refused, then drop the hijacked
	// connection so the client notices.
	server.server.Close()
	server.closeConns()

	select {
	case err := <-disconnected:
		if err == nil {
			t.Fatalf("expected a surfaced error after exhausting reconnects")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the disconnected callback")
	}
}

func TestDisconnectIsCleanAndIdempotent(t *testing.T) {
	server := newBridgeServer(t)

	disconnected := make(chan error, 2)
	client := NewClient(server.url(),
		WithDisconnectedCallback(func(err error) { disconnected <- err }),
	)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected connect error: %v", err)
	}

	if err := client.Disconnect(); err != nil {
		t.Fatalf("unexpected disconnect error: %v", err)
	}
	if err := client.Disconnect(); err != nil {
		t.Fatalf("expected repeated disconnect to be harmless, got %v", err)
	}

	select {
	case err := <-disconnected:
		if err != nil {
			t.Fatalf("explicit disconnect must not surface an error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the disconnected callback")
	}

	if err := client.RequestSpeech("late"); err == nil {
		t.Fatalf("expected writes to fail after disconnect")
	}
}
