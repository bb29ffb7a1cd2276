package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vaanilabs/vaani-core/core/audio"
)

var (
	// ErrPermissionDenied means the user refused microphone access. Terminal
	// until the user re-grants it; never retried.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrDeviceNotFound means no usable audio input device exists. Terminal
	// until hardware changes.
	ErrDeviceNotFound = errors.New("audio input device not found")
)

// Device is one audio input device. Acquire may fail transiently (retried by
// Capture) or terminally with one of the sentinel errors above.
type Device interface {
	Acquire(ctx context.Context) error
	Start(onAudio func(audio []byte)) error
	Stop() error
	Release() error
	EncodingInfo() audio.EncodingInfo
}

// endedNotifier is implemented by devices that can signal their input track
// ending (hot-unplug). Capture re-acquires automatically when it fires.
type endedNotifier interface {
	OnEnded(callback func())
}

type Option func(*Capture)

func WithMaxAttempts(attempts int) Option {
	return func(c *Capture) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

func WithRetryDelay(delay time.Duration) Option {
	return func(c *Capture) { c.retryDelay = delay }
}

// WithUnavailableCallback fires when the device is lost and automatic
// re-acquisition gives up.
func WithUnavailableCallback(callback func(err error)) Option {
	return func(c *Capture) { c.unavailableCallback = callback }
}

// Capture owns the audio input device: it acquires it with bounded retries,
// streams audio to a single listener, and re-acquires automatically when the
// device signals that its track ended.
type Capture struct {
	device Device

	maxAttempts int
	retryDelay  time.Duration

	unavailableCallback func(err error)

	mu       sync.Mutex
	acquired bool
	onAudio  func(audio []byte)
}

func NewCapture(device Device, opts ...Option) *Capture {
	capture := &Capture{
		device:              device,
		maxAttempts:         3,
		retryDelay:          500 * time.Millisecond,
		unavailableCallback: func(error) {},
	}

	for _, opt := range opts {
		opt(capture)
	}

	if notifier, ok := device.(endedNotifier); ok {
		notifier.OnEnded(capture.reacquire)
	}

	return capture
}

// RequestAccess acquires the input device, retrying transient failures with
// a fixed delay up to the attempt cap. Permission denial and missing devices
// are terminal and returned immediately.
func (c *Capture) RequestAccess(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := c.device.Acquire(ctx)
		if err == nil {
			c.mu.Lock()
			c.acquired = true
			c.mu.Unlock()
			return nil
		}
		if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceNotFound) {
			return err
		}

		lastErr = err
		logger.Warn("Audio input acquisition failed, retrying", "attempt", attempt, "error", err)
		if attempt < c.maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
	}

	return fmt.Errorf("failed to acquire audio input after %d attempts: %w", c.maxAttempts, lastErr)
}

// Start streams captured audio to the listener. RequestAccess must have
// succeeded first.
func (c *Capture) Start(onAudio func(audio []byte)) error {
	c.mu.Lock()
	if !c.acquired {
		c.mu.Unlock()
		return fmt.Errorf("audio input not acquired")
	}
	c.onAudio = onAudio
	c.mu.Unlock()

	return c.device.Start(onAudio)
}

func (c *Capture) Stop() error {
	c.mu.Lock()
	c.onAudio = nil
	c.mu.Unlock()

	return c.device.Stop()
}

func (c *Capture) Close() error {
	c.mu.Lock()
	c.acquired = false
	c.onAudio = nil
	c.mu.Unlock()

	return c.device.Release()
}

func (c *Capture) EncodingInfo() audio.EncodingInfo {
	return c.device.EncodingInfo()
}

// reacquire reclaims the device after its track ended, resuming the stream
// for the listener that was active when it dropped.
func (c *Capture) reacquire() {
	c.mu.Lock()
	c.acquired = false
	onAudio := c.onAudio
	c.mu.Unlock()

	logger.Info("Audio input track ended, re-acquiring")
	if err := c.RequestAccess(context.Background()); err != nil {
		c.unavailableCallback(err)
		return
	}
	if onAudio != nil {
		if err := c.Start(onAudio); err != nil {
			c.unavailableCallback(err)
		}
	}
}
