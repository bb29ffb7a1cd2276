package generation

import "unicode"

const (
	// LocaleDefault is the locale assigned to fragments without any
	// script-specific code points.
	LocaleDefault = "en-US"
	// LocaleHindi is assigned to fragments containing Devanagari code points.
	LocaleHindi = "hi-IN"
)

// Fragment is a short run of speakable reply text plus the locale inferred
// for it. Fragments are produced in emission order and are never reordered
// downstream.
type Fragment struct {
	Text   string
	Locale string
}

// NewFragment tags the given text with a locale inferred from its script.
func NewFragment(text string) Fragment {
	return Fragment{Text: text, Locale: DetectLocale(text)}
}

// DetectLocale performs lightweight script detection: any Devanagari code
// point tags the text as Hindi, everything else falls back to the default
// locale.
func DetectLocale(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return LocaleHindi
		}
	}
	return LocaleDefault
}
