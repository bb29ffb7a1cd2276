package generation

import "strings"

// Sentence terminators recognised by the splitters. The danda (U+0964) is the
// Devanagari full stop.
const sentenceTerminators = ".!?।"

func isSentenceTerminator(r rune) bool {
	return strings.ContainsRune(sentenceTerminators, r)
}

// SplitSentences re-segments a fully decoded reply into sentence fragments.
// Terminators stay attached to their sentence; whitespace-only runs are
// dropped; a trailing run without a terminator is emitted as the final
// fragment. Fragment order follows text order exactly.
func SplitSentences(text string) []Fragment {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var fragments []Fragment
	var builder strings.Builder
	for _, r := range trimmed {
		builder.WriteRune(r)
		if isSentenceTerminator(r) {
			if sentence := strings.TrimSpace(builder.String()); sentence != "" {
				fragments = append(fragments, NewFragment(sentence))
			}
			builder.Reset()
		}
	}

	if tail := strings.TrimSpace(builder.String()); tail != "" {
		fragments = append(fragments, NewFragment(tail))
	}

	return fragments
}

// SplitWordWindows re-segments a reply into windows of at most windowSize
// words, flushing early whenever a word ends at a sentence boundary so no
// fragment straddles two sentences.
func SplitWordWindows(text string, windowSize int) []Fragment {
	if windowSize <= 0 {
		windowSize = 8
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var fragments []Fragment
	window := make([]string, 0, windowSize)
	flush := func() {
		if len(window) == 0 {
			return
		}
		fragments = append(fragments, NewFragment(strings.Join(window, " ")))
		window = window[:0]
	}

	for _, word := range words {
		window = append(window, word)
		runes := []rune(word)
		endsSentence := len(runes) > 0 && isSentenceTerminator(runes[len(runes)-1])
		if endsSentence || len(window) >= windowSize {
			flush()
		}
	}
	flush()

	return fragments
}
