package speech

import "strings"

type Gender string

const (
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
	GenderNeutral Gender = "neutral"
)

// Voice describes one installed voice exposed by the platform's catalog.
type Voice struct {
	Name   string
	Locale string
	Gender Gender
}

// Catalog is the platform's voice inventory. Voices may load asynchronously,
// so the catalog can legitimately be empty early on and fill in later.
type Catalog interface {
	Voices() []Voice
}

// Preference narrows voice resolution for a locale: an exact voice name wins
// over everything, a gender preference steers the heuristic tier.
type Preference struct {
	Name   string
	Gender Gender
}

// ResolveVoice picks the best available voice for a locale using ordered
// preference tiers: exact preferred name, then gender plus locale, then
// locale prefix, then any voice at all. It reports false only when the
// catalog is empty.
func ResolveVoice(voices []Voice, locale string, preference Preference) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}

	if preference.Name != "" {
		for _, voice := range voices {
			if voice.Name == preference.Name {
				return voice, true
			}
		}
	}

	if preference.Gender != "" {
		for _, voice := range voices {
			if voice.Gender == preference.Gender && localeMatches(voice.Locale, locale) {
				return voice, true
			}
		}
	}

	for _, voice := range voices {
		if localeMatches(voice.Locale, locale) {
			return voice, true
		}
	}

	return voices[0], true
}

// localeMatches compares primary language subtags, so "hi" matches "hi-IN".
func localeMatches(voiceLocale, wantedLocale string) bool {
	return primarySubtag(voiceLocale) == primarySubtag(wantedLocale)
}

func primarySubtag(locale string) string {
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		locale = locale[:i]
	}
	return strings.ToLower(locale)
}
