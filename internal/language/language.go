// Package language classifies memo text into one of the supported languages
// using character-script heuristics.
package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Code is a supported memo language, as an ISO 639-1 code.
type Code string

const (
	English  Code = "en"
	Korean   Code = "ko"
	Japanese Code = "ja"
	Spanish  Code = "es"
	French   Code = "fr"
	German   Code = "de"
)

// Default is returned when no script rule matches.
const Default = English

var supported = []Code{English, Korean, Japanese, Spanish, French, German}

var tags = map[Code]language.Tag{
	English:  language.English,
	Korean:   language.Korean,
	Japanese: language.Japanese,
	Spanish:  language.Spanish,
	French:   language.French,
	German:   language.German,
}

// placeholder tags used by fallback refinements
var fallbackTags = map[Code]string{
	English:  "#memo",
	Korean:   "#메모",
	Japanese: "#メモ",
	Spanish:  "#nota",
	French:   "#note",
	German:   "#notiz",
}

// Supported returns every supported language in a stable order.
func Supported() []Code {
	out := make([]Code, len(supported))
	copy(out, supported)
	return out
}

// Parse accepts a bare code ("ko") or a BCP 47 tag ("ko-KR") and reports
// whether it names a supported language.
func Parse(s string) (Code, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	code := Code(base.String())
	if _, ok := tags[code]; !ok {
		return "", false
	}
	return code, true
}

// Tag returns the BCP 47 tag for c. Unknown codes map to the default language.
func (c Code) Tag() language.Tag {
	if t, ok := tags[c]; ok {
		return t
	}
	return tags[Default]
}

// DisplayName returns the English name of the language, e.g. "Korean".
func (c Code) DisplayName() string {
	return display.English.Languages().Name(c.Tag())
}

func (c Code) String() string { return string(c) }

// FallbackTag returns the placeholder tag attached to fallback refinements.
func FallbackTag(c Code) string {
	if t, ok := fallbackTags[c]; ok {
		return t
	}
	return fallbackTags[Default]
}
