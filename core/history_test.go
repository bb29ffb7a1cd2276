package conversation

import (
	"fmt"
	"testing"
)

func TestHistoryDropsOldestBeyondCapacity(t *testing.T) {
	history := NewHistory(WithCapacity(4))

	for i := 0; i < 10; i++ {
		history.Append(NewUserUtterance(fmt.Sprintf("utterance %d", i)))
	}

	entries := history.Entries()
	if len(entries) != 4 {
		t.Fatalf("expected exactly the capacity retained, got %d", len(entries))
	}
	if entries[0].Content != "utterance 6" {
		t.Fatalf("expected oldest entries dropped first, got %q", entries[0].Content)
	}
	if entries[3].Content != "utterance 9" {
		t.Fatalf("expected the newest entry last, got %q", entries[3].Content)
	}
}

func TestHistoryKeepFirstPolicyPinsOpeningEntry(t *testing.T) {
	history := NewHistory(WithCapacity(3), WithEvictionPolicy(EvictOldestKeepFirst))

	for i := 0; i < 6; i++ {
		history.Append(NewUserUtterance(fmt.Sprintf("utterance %d", i)))
	}

	entries := history.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected exactly the capacity retained, got %d", len(entries))
	}
	if entries[0].Content != "utterance 0" {
		t.Fatalf("expected the first entry pinned, got %q", entries[0].Content)
	}
	if entries[1].Content != "utterance 4" || entries[2].Content != "utterance 5" {
		t.Fatalf("expected the newest entries after the pinned one, got %q and %q",
			entries[1].Content, entries[2].Content)
	}
}

func TestHistoryLastReturnsMostRecent(t *testing.T) {
	history := NewHistory()
	history.Append(NewUserUtterance("one"))
	history.Append(NewAssistantUtterance("two"))
	history.Append(NewUserUtterance("three"))

	last := history.Last(2)
	if len(last) != 2 || last[0].Content != "two" || last[1].Content != "three" {
		t.Fatalf("expected the two most recent entries in order, got %v", last)
	}

	if got := history.Last(10); len(got) != 3 {
		t.Fatalf("expected the whole history when k exceeds length, got %d", len(got))
	}
}

func TestHistoryClearDropsEverything(t *testing.T) {
	history := NewHistory()
	history.Append(NewUserUtterance("one"))
	history.Append(NewAssistantUtterance("two"))

	history.Clear()

	if history.Len() != 0 {
		t.Fatalf("expected an empty history after clear, got %d entries", history.Len())
	}
}

func TestNewUserUtteranceTagsSentimentAndLocale(t *testing.T) {
	utterance := NewUserUtterance("thank you, this is great")
	if utterance.Sentiment != SentimentPositive {
		t.Fatalf("expected positive sentiment, got %q", utterance.Sentiment)
	}
	if utterance.Locale != "en-US" {
		t.Fatalf("expected default locale, got %q", utterance.Locale)
	}
	if utterance.Role != RoleUser || utterance.ID == "" {
		t.Fatalf("expected a user role and generated id")
	}

	hindi := NewUserUtterance("यह बहुत अच्छा है")
	if hindi.Locale != "hi-IN" {
		t.Fatalf("expected hindi locale for devanagari text, got %q", hindi.Locale)
	}
}
