package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vaanilabs/vaani-core/core/generation"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Utterance is one finalized conversation entry.
type Utterance struct {
	ID        string
	Role      Role
	Content   string
	Sentiment Sentiment
	Locale    string
	Timestamp time.Time
}

func NewUserUtterance(content string) Utterance {
	return Utterance{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Sentiment: AnalyzeSentiment(content),
		Locale:    generation.DetectLocale(content),
		Timestamp: time.Now(),
	}
}

func NewAssistantUtterance(content string) Utterance {
	return Utterance{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Locale:    generation.DetectLocale(content),
		Timestamp: time.Now(),
	}
}

// EvictionPolicy decides which entry leaves a full history.
type EvictionPolicy string

const (
	// EvictOldest drops the oldest entry.
	EvictOldest EvictionPolicy = "drop-oldest"
	// EvictOldestKeepFirst drops the oldest entry except the very first one,
	// which stays pinned (useful when the opening exchange carries context).
	EvictOldestKeepFirst EvictionPolicy = "keep-first"
)

const defaultHistoryCapacity = 12

type HistoryOption func(*History)

func WithCapacity(capacity int) HistoryOption {
	return func(h *History) {
		if capacity > 0 {
			h.capacity = capacity
		}
	}
}

func WithEvictionPolicy(policy EvictionPolicy) HistoryOption {
	return func(h *History) { h.policy = policy }
}

// History is the bounded conversation log. Appending beyond capacity evicts
// per the configured policy; reads return defensive copies.
type History struct {
	mu       sync.Mutex
	entries  []Utterance
	capacity int
	policy   EvictionPolicy
}

func NewHistory(opts ...HistoryOption) *History {
	history := &History{
		capacity: defaultHistoryCapacity,
		policy:   EvictOldest,
	}

	for _, opt := range opts {
		opt(history)
	}

	return history
}

func (h *History) Append(utterance Utterance) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, utterance)
	for len(h.entries) > h.capacity {
		switch h.policy {
		case EvictOldestKeepFirst:
			if len(h.entries) > 1 {
				h.entries = append(h.entries[:1], h.entries[2:]...)
			} else {
				h.entries = h.entries[1:]
			}
		default:
			h.entries = h.entries[1:]
		}
	}
}

func (h *History) Entries() []Utterance {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := make([]Utterance, len(h.entries))
	copy(entries, h.entries)
	return entries
}

// Last returns up to k most recent entries, oldest first.
func (h *History) Last(k int) []Utterance {
	h.mu.Lock()
	defer h.mu.Unlock()

	if k > len(h.entries) {
		k = len(h.entries)
	}
	entries := make([]Utterance, k)
	copy(entries, h.entries[len(h.entries)-k:])
	return entries
}

// Clear drops every entry. The conversation never persists history, so this
// is the only way to reset it.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
