package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vaanilabs/vaani-core/bridge"
	"github.com/vaanilabs/vaani-core/config"
	conversation "github.com/vaanilabs/vaani-core/core"
	"github.com/vaanilabs/vaani-core/core/capture"
	"github.com/vaanilabs/vaani-core/core/capture/miniaudio"
	"github.com/vaanilabs/vaani-core/core/events"
	"github.com/vaanilabs/vaani-core/core/generation/gemini"
	"github.com/vaanilabs/vaani-core/core/recognition/deepgram"
	"github.com/vaanilabs/vaani-core/core/speech"
	"github.com/vaanilabs/vaani-core/core/visualizer"
)

const playbackBufferSize = 512

func main() {
	printSchema := flag.Bool("print-config-schema", false, "print the configuration JSON schema and exit")
	flag.Parse()

	if *printSchema {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(config.Schema()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode schema: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		var missing config.MissingKeyError
		if errors.As(err, &missing) {
			return fmt.Errorf("%w (set it in the environment or a .env file)", missing)
		}
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eventStream := make(chan events.Event, 128)
	publish := func(event events.Event) {
		select {
		case eventStream <- event:
		default:
			// The UI fell behind; dropping a display event is harmless.
		}
	}

	viz := visualizer.New()

	generator := gemini.NewClient(cfg.GeminiAPIKey, gemini.WithModel(cfg.GeminiModel))

	options := []conversation.Option{
		conversation.WithGenerator(generator),
		conversation.WithRecognitionLocale(cfg.Locale),
		conversation.WithPersona(cfg.Persona),
		conversation.WithHistory(conversation.NewHistory(conversation.WithCapacity(cfg.HistoryCapacity))),
	}

	if cfg.DeepgramAPIKey != "" {
		transcriber := deepgram.NewTranscriptionClient(cfg.DeepgramAPIKey)
		microphone := capture.NewCapture(miniaudio.NewClient(),
			capture.WithUnavailableCallback(func(err error) {
				logger.Error("Microphone became unavailable", "error", err)
			}),
		)
		options = append(options,
			conversation.WithTranscriber(transcriber),
			conversation.WithAudioInput(microphone),
		)
		viz.Start()
	} else {
		logger.Warn("DEEPGRAM_API_KEY is not set, voice input disabled")
	}

	if cfg.BridgeURL != "" {
		sink, err := newPlayback(playbackBufferSize)
		if err != nil {
			return err
		}
		defer sink.Close()

		var engine *bridgeEngine
		bridgeClient := bridge.NewClient(cfg.BridgeURL,
			bridge.WithAudioCallback(func(frame []byte) { engine.HandleAudio(frame) }),
			bridge.WithDisconnectedCallback(func(err error) {
				if err != nil {
					logger.Error("Audio bridge connection lost", "error", err)
				}
			}),
		)
		engine = newBridgeEngine(bridgeClient, sink)

		if err := bridgeClient.Connect(ctx); err != nil {
			return err
		}
		defer bridgeClient.Disconnect()

		synthesizer := speech.NewSynthesizer(engine, bridgeCatalog{},
			speech.WithErrorCallback(func(err error) {
				logger.Warn("Speech synthesis failed", "error", err)
			}),
		)
		options = append(options, conversation.WithSpeaker(synthesizer))
	} else {
		logger.Warn("VAANI_BRIDGE_URL is not set, speech output disabled")
	}

	session := conversation.NewConversation(options...)
	defer session.Close()

	err = session.Start(ctx,
		conversation.WithEventCallback(publish),
		conversation.WithTurnStateChangedCallback(func(state conversation.TurnState) {
			publish(newTurnStateChanged(state))
		}),
		conversation.WithInputAudioCallback(viz.PushPCM16),
		conversation.WithErrorCallback(func(err error) {
			logger.Error("Session error", "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to start conversation: %w", err)
	}

	return RunUI(session, viz, eventStream)
}
