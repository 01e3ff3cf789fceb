// Package prompt builds the generation request for a memo from a
// per-language instruction template.
package prompt

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/rcliao/mind-note/internal/language"
	"github.com/rcliao/mind-note/internal/model"
)

// limitToken marks where templates state the refined-length limit.
const limitToken = "{{max_refined}}"

//go:embed templates/*.txt
var templateFS embed.FS

// Prompt is the full text sent to the generation service.
type Prompt struct {
	Language language.Code
	Template string
	Text     string
}

// Languages without their own template share the English one; the model is
// told to answer in the input language.
var templateFor = map[language.Code]string{
	language.English: "en",
	language.Korean:  "ko",
}

var templates = mustLoad("en", "ko")

func mustLoad(names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		b, err := templateFS.ReadFile("templates/" + n + ".txt")
		if err != nil {
			panic(fmt.Sprintf("prompt: missing template %s: %v", n, err))
		}
		out[n] = string(b)
	}
	return out
}

// TemplateName returns the template used for lang.
func TemplateName(lang language.Code) string {
	if name, ok := templateFor[lang]; ok {
		return name
	}
	return "en"
}

// Build appends text, unchanged, to the template selected for lang. The
// instructions state the default refined-length limit.
func Build(lang language.Code, text string) Prompt {
	return BuildWithLimit(lang, text, model.MaxRefinedLength)
}

// BuildWithLimit is Build with maxRefined as the stated limit, so the model
// is asked for the same bound the output is validated against.
func BuildWithLimit(lang language.Code, text string, maxRefined int) Prompt {
	if maxRefined <= 0 {
		maxRefined = model.MaxRefinedLength
	}
	name := TemplateName(lang)
	head := strings.ReplaceAll(templates[name], limitToken, strconv.Itoa(maxRefined))
	return Prompt{
		Language: lang,
		Template: name,
		Text:     head + text,
	}
}
