package deepgram

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultListenURL = "wss://api.deepgram.com/v1/listen"

// TranscriptionClient streams microphone audio to the transcription service
// over a websocket and reports results through the configured callbacks.
type TranscriptionClient struct {
	apiKey    string
	listenURL string
	model     string

	conn   *websocket.Conn
	connMu sync.Mutex

	lastMsgTs time.Time

	unendedSegment        bool
	accumulatedTranscript string
	accumulatedConfidence float64
}

type ClientOption func(*TranscriptionClient)

// WithListenURL overrides the websocket endpoint, primarily for tests.
func WithListenURL(listenURL string) ClientOption {
	return func(c *TranscriptionClient) { c.listenURL = listenURL }
}

func WithModel(model string) ClientOption {
	return func(c *TranscriptionClient) { c.model = model }
}

func NewTranscriptionClient(apiKey string, opts ...ClientOption) *TranscriptionClient {
	client := &TranscriptionClient{
		apiKey:    apiKey,
		listenURL: defaultListenURL,
		model:     "nova-3",
		lastMsgTs: time.Now(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}
