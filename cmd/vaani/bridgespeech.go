package main

import (
	"context"
	"sync"
	"time"

	"github.com/vaanilabs/vaani-core/bridge"
	"github.com/vaanilabs/vaani-core/core/speech"
)

const (
	// firstAudioWait bounds how long an utterance waits for the bridge to
	// start pushing audio before it is treated as finished.
	firstAudioWait = 3 * time.Second
	// audioIdleWait is the quiet period after the last audio frame that
	// marks an utterance as fully played.
	audioIdleWait = 300 * time.Millisecond
)

// bridgeEngine vocalizes utterances through the audio bridge: it sends the
// text over the websocket, plays the binary frames the server pushes back,
// and treats a quiet period on the audio stream as the end of the utterance.
type bridgeEngine struct {
	client   *bridge.Client
	playback *playback

	mu       sync.Mutex
	activity chan struct{}
}

func newBridgeEngine(client *bridge.Client, playback *playback) *bridgeEngine {
	return &bridgeEngine{client: client, playback: playback}
}

// HandleAudio is wired as the bridge client's audio callback. It runs on the
// bridge read loop, so playback backpressure naturally paces the socket.
func (e *bridgeEngine) HandleAudio(frame []byte) {
	if err := e.playback.Play(frame); err != nil {
		logger.Warn("Failed to play bridge audio", "error", err)
	}

	e.mu.Lock()
	activity := e.activity
	e.mu.Unlock()
	if activity != nil {
		select {
		case activity <- struct{}{}:
		default:
		}
	}
}

func (e *bridgeEngine) Speak(ctx context.Context, utterance speech.Utterance) error {
	activity := make(chan struct{}, 1)
	e.mu.Lock()
	e.activity = activity
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.activity = nil
		e.mu.Unlock()
	}()

	if err := e.client.RequestSpeech(utterance.Text); err != nil {
		return err
	}

	timer := time.NewTimer(firstAudioWait)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := e.client.Stop(); err != nil {
				logger.Warn("Failed to stop bridge synthesis", "error", err)
			}
			e.playback.Clear()
			return ctx.Err()
		case <-activity:
			timer.Reset(audioIdleWait)
		case <-timer.C:
			return nil
		}
	}
}

// bridgeCatalog is the fixed voice inventory of the bridge server. The
// bridge picks the actual voice server-side, so the catalog only has to
// cover the locales the prompt pipeline can emit.
type bridgeCatalog struct{}

func (bridgeCatalog) Voices() []speech.Voice {
	return []speech.Voice{
		{Name: "bridge-en", Locale: "en-US", Gender: speech.GenderFemale},
		{Name: "bridge-hi", Locale: "hi-IN", Gender: speech.GenderFemale},
	}
}
