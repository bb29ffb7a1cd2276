package visualizer

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"
)

const (
	// transformSize is the number of samples fed to each transform. Power of
	// two, kept small enough to run at animation-frame cadence.
	transformSize = 256

	baseRadius  = 0.45
	swingRadius = 0.35
)

// Point is one vertex of the radial waveform, in unit coordinates centered
// on (0, 0).
type Point struct {
	X float64
	Y float64
}

// Frame is a single rendered snapshot: one vertex per frequency bin plus the
// per-frame average energy that drives the radius swing.
type Frame struct {
	Points []Point
	Energy float64
	Idle   bool
}

// Visualizer is a pure rendering sink: it samples the most recent audio
// window, transforms it to the frequency domain, and shapes the magnitudes
// into a radial waveform. Nothing it produces feeds back into control flow.
type Visualizer struct {
	running atomic.Bool

	mu     sync.Mutex
	window []float64
}

func New() *Visualizer {
	return &Visualizer{window: make([]float64, transformSize)}
}

func (v *Visualizer) Start() { v.running.Store(true) }
func (v *Visualizer) Stop()  { v.running.Store(false) }

// PushPCM16 appends little-endian 16-bit samples to the rolling window,
// keeping only the most recent transform-sized slice.
func (v *Visualizer) PushPCM16(data []byte) {
	if len(data) < 2 {
		return
	}

	samples := make([]float64, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(data[i:]))
		samples = append(samples, float64(sample)/math.MaxInt16)
	}

	v.mu.Lock()
	v.window = append(v.window, samples...)
	if overflow := len(v.window) - transformSize; overflow > 0 {
		v.window = v.window[overflow:]
	}
	v.mu.Unlock()
}

// Render produces the current frame. While stopped it renders the static
// idle ring instead of live spectrum data.
func (v *Visualizer) Render() Frame {
	if !v.running.Load() {
		return idleFrame()
	}

	v.mu.Lock()
	window := make([]float64, len(v.window))
	copy(window, v.window)
	v.mu.Unlock()

	magnitudes := spectrum(window, transformSize)

	var total float64
	for _, magnitude := range magnitudes {
		total += magnitude
	}
	energy := total / float64(len(magnitudes))

	points := make([]Point, len(magnitudes))
	for i, magnitude := range magnitudes {
		angle := 2 * math.Pi * float64(i) / float64(len(magnitudes))
		radius := baseRadius + swingRadius*clamp(magnitude+energy, 0, 1)
		points[i] = Point{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
	}

	return Frame{Points: points, Energy: energy}
}

func idleFrame() Frame {
	points := make([]Point, transformSize/2)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(len(points))
		points[i] = Point{X: baseRadius * math.Cos(angle), Y: baseRadius * math.Sin(angle)}
	}
	return Frame{Points: points, Idle: true}
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
