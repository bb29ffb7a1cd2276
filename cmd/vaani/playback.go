package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/vaanilabs/vaani-core/core/audio"
)

// playback is the local audio output sink for bridge-synthesized speech. It
// writes 16-bit mono PCM to the default output device in fixed-size buffers,
// carrying partial buffers over between frames.
type playback struct {
	bufferSize int
	stream     *portaudio.Stream
	out        []int16

	mu       sync.Mutex
	leftover []byte
}

func newPlayback(bufferSize int) (*playback, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize audio output: %w", err)
	}

	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(0, 1, audio.DefaultSampleRate, bufferSize, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open audio output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start audio output stream: %w", err)
	}

	return &playback{
		bufferSize: bufferSize,
		stream:     stream,
		out:        out,
	}, nil
}

// Play blocks until the frame has been handed to the output device, keeping
// any trailing partial buffer for the next frame.
func (p *playback) Play(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	bufferBytes := p.bufferSize * 2
	data := append(p.leftover, frame...)

	for len(data) >= bufferBytes {
		if err := binary.Read(bytes.NewReader(data[:bufferBytes]), binary.LittleEndian, p.out); err != nil {
			return fmt.Errorf("failed to decode audio frame: %w", err)
		}
		if err := p.stream.Write(); err != nil {
			return fmt.Errorf("failed to write audio frame: %w", err)
		}
		data = data[bufferBytes:]
	}

	p.leftover = make([]byte, len(data))
	copy(p.leftover, data)
	return nil
}

// Clear drops any buffered audio that has not reached the device yet.
func (p *playback) Clear() {
	p.mu.Lock()
	p.leftover = nil
	p.mu.Unlock()
}

func (p *playback) Close() {
	p.stream.Close()
	portaudio.Terminate()
}
