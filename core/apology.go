package conversation

import "github.com/vaanilabs/vaani-core/core/generation"

// apologies are the user-visible failure messages, per locale. Failures are
// always rendered apologetically in the active locale, never as raw
// technical text.
var apologies = map[string]string{
	generation.LocaleDefault: "Sorry, I'm having trouble responding right now. Please try again.",
	generation.LocaleHindi:   "क्षमा करें, मुझे अभी जवाब देने में परेशानी हो रही है। कृपया फिर से कोशिश करें।",
}

func apologyFor(locale string) generation.Fragment {
	text, ok := apologies[locale]
	if !ok {
		text = apologies[generation.LocaleDefault]
	}
	return generation.Fragment{Text: text, Locale: locale}
}
