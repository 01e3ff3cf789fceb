package refine

import (
	"github.com/rcliao/mind-note/internal/language"
	"github.com/rcliao/mind-note/internal/model"
	"github.com/rcliao/mind-note/internal/taxonomy"
)

// Synthesize builds the result used when the generator could not produce a
// valid refinement. It is pure: equal inputs give equal results.
func Synthesize(original string, lang language.Code, reg *taxonomy.Registry, maxLen int) model.Refinement {
	if maxLen <= 0 {
		maxLen = model.MaxRefinedLength
	}
	return model.Refinement{
		Refined:      truncateRunes(original, maxLen),
		Tags:         []string{language.FallbackTag(lang)},
		Context:      reg.DefaultCategory(),
		Insight:      "",
		Language:     string(lang),
		OriginalText: original,
		IsFallback:   true,
	}
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
