package advice

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is the display name of a supported response language.
type Language string

const (
	Hindi   Language = "Hindi"
	English Language = "English"
)

// Tag returns the BCP 47 tag for l.
func (l Language) Tag() language.Tag {
	if l == Hindi {
		return language.Hindi
	}
	return language.English
}

// English is listed first so it is the matcher's fallback.
var matcher = language.NewMatcher([]language.Tag{language.English, language.Hindi})

var displayNames = map[string]Language{
	"hindi":   Hindi,
	"हिंदी":   Hindi,
	"हिन्दी":  Hindi,
	"english": English,
}

// ResolveLanguage maps a requested language to a supported one. It accepts
// display names ("Hindi"), BCP 47 tags ("hi-IN") and Accept-Language
// lists. Empty input means Hindi; anything that does not match Hindi
// resolves to English.
func ResolveLanguage(s string) Language {
	s = strings.TrimSpace(s)
	if s == "" {
		return Hindi
	}
	if l, ok := displayNames[strings.ToLower(s)]; ok {
		return l
	}

	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return English
	}
	// The matcher maps related languages (Marathi, Gujarati) to Hindi with
	// low confidence; only a requested Hindi tag counts.
	_, idx, conf := matcher.Match(tags...)
	if idx == 1 && conf != language.No && requestsHindi(tags) {
		return Hindi
	}
	return English
}

func requestsHindi(tags []language.Tag) bool {
	hi, _ := language.Hindi.Base()
	for _, t := range tags {
		if b, _ := t.Base(); b == hi {
			return true
		}
	}
	return false
}
