package language

import (
	"strings"
	"unicode"
)

type rule struct {
	code  Code
	match func(r rune) bool
}

// Rules are evaluated in order over the whole text; the first rule with any
// matching rune wins. Unambiguous scripts come before accent heuristics.
var rules = []rule{
	{Korean, isHangul},
	{Japanese, isKana},
	{Spanish, runeIn("ñ¿¡")},
	{German, runeIn("ßäöü")},
	{French, runeIn("çœàèùâêîôûëïÿ")},
	{Spanish, runeIn("áíóú")},
	{French, runeIn("é")},
	// Han without kana or Hangul: lean toward the supported CJK language.
	{Japanese, isHan},
}

// Detect returns the language of text. It never fails: text that matches no
// rule, including the empty string, is reported as Default.
func Detect(text string) Code {
	if text == "" {
		return Default
	}
	lower := strings.ToLower(text)
	for _, rl := range rules {
		if strings.IndexFunc(lower, rl.match) >= 0 {
			return rl.code
		}
	}
	return Default
}

func isHangul(r rune) bool {
	switch {
	case r >= 0xAC00 && r <= 0xD7AF: // syllables
		return true
	case r >= 0x1100 && r <= 0x11FF: // jamo
		return true
	case r >= 0x3130 && r <= 0x318F: // compatibility jamo
		return true
	}
	return false
}

func isKana(r rune) bool {
	return unicode.In(r, unicode.Hiragana, unicode.Katakana)
}

func isHan(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

func runeIn(set string) func(rune) bool {
	return func(r rune) bool { return strings.ContainsRune(set, r) }
}
