package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/vaanilabs/vaani-core/core/audio"
	"github.com/vaanilabs/vaani-core/core/capture"
)

// Client captures microphone audio through miniaudio. It implements
// capture.Device.
type Client struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	onAudio func(audio []byte)
	onEnded func()

	mu sync.Mutex
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) Acquire(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		return nil
	}

	if c.audioContext == nil {
		audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {})
		if err != nil {
			return fmt.Errorf("failed to initialize audio context: %w", err)
		}
		c.audioContext = audioCtx
	}

	sampleRate := uint32(audio.DefaultSampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Capture)
	c.config.SampleRate = sampleRate
	c.config.Capture.Format = format
	c.config.Capture.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PerformanceProfile = malgo.LowLatency
	c.config.PeriodSizeInFrames = 480
	c.config.Periods = 3

	device, err := malgo.InitDevice(c.audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			c.mu.Lock()
			onAudio := c.onAudio
			c.mu.Unlock()
			if onAudio != nil {
				onAudio(pInput[:n])
			}
		},
		Stop: func() {
			// Runs off the audio thread; device.Stop may fire it while the
			// caller still holds the client lock.
			go func() {
				c.mu.Lock()
				onEnded := c.onEnded
				started := c.device != nil && c.onAudio != nil
				c.mu.Unlock()
				// A stop we did not request means the device went away.
				if started && onEnded != nil {
					onEnded()
				}
			}()
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", capture.ErrDeviceNotFound, err)
	}

	c.device = device
	return nil
}

func (c *Client) Start(onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if c.device.IsStarted() {
		c.onAudio = onAudio
		return nil
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	c.onAudio = onAudio
	return nil
}

func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	// Drop the listener first so the stop callback does not read it as an
	// unexpected device loss.
	c.onAudio = nil
	if !c.device.IsStarted() {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}

	return nil
}

func (c *Client) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	if c.audioContext != nil {
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
		c.audioContext = nil
	}

	c.onAudio = nil
	return nil
}

// OnEnded registers the hot-unplug callback consumed by capture.Capture.
func (c *Client) OnEnded(callback func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEnded = callback
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
