package generation

import "time"

// Config holds the fixed sampling parameters sent with every generation
// request.
type Config struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
	StopSequences   []string
}

// DefaultConfig returns the sampling parameters used for conversational
// replies.
func DefaultConfig() Config {
	return Config{
		Temperature:     0.7,
		TopP:            0.9,
		TopK:            40,
		MaxOutputTokens: 256,
		StopSequences:   []string{"User:", "USER:"},
	}
}

// Pacing controls the simulated-streaming cadence: the delay inserted between
// consecutive fragment emissions so playback sounds natural.
type Pacing struct {
	FragmentDelay time.Duration
}

// DefaultPacing spaces fragments a natural-speech distance apart.
func DefaultPacing() Pacing {
	return Pacing{FragmentDelay: 80 * time.Millisecond}
}
