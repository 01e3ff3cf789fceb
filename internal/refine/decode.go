package refine

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/rcliao/mind-note/internal/llm"
	"github.com/rcliao/mind-note/internal/model"
)

// Validated is a model response that passed schema checks. Context is not
// yet constrained to the taxonomy.
type Validated struct {
	Refined string   `json:"refined" validate:"required"`
	Tags    []string `json:"tags" validate:"min=1,max=3,dive,required"`
	Context string   `json:"context"`
	Insight string   `json:"insight"`
}

// wireOutput mirrors what the model is asked to return. Pointers separate
// absent fields from empty ones.
type wireOutput struct {
	Refined *string  `json:"refined"`
	Tags    []string `json:"tags"`
	Tag     *string  `json:"tag"`
	Context *string  `json:"context"`
	Insight *string  `json:"insight"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func outputValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		validate = v
	})
	return validate
}

// Decode parses raw model output into a Validated result. Any failure wraps
// ErrInvalidOutput; oversize text is rejected rather than truncated.
func Decode(raw string, maxLen int) (Validated, error) {
	payload := extractObject(stripCodeFence(raw))
	if payload == "" {
		return Validated{}, fmt.Errorf("%w: empty payload", ErrInvalidOutput)
	}

	var wire wireOutput
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return Validated{}, fmt.Errorf("%w: %v (payload snippet: %s)", ErrInvalidOutput, err, llm.Snippet(payload))
	}
	if wire.Refined == nil {
		return Validated{}, fmt.Errorf("%w: refined is missing", ErrInvalidOutput)
	}
	if wire.Context == nil {
		return Validated{}, fmt.Errorf("%w: context is missing", ErrInvalidOutput)
	}

	out := Validated{
		Refined: strings.TrimSpace(*wire.Refined),
		Tags:    collectTags(wire),
		Context: strings.TrimSpace(*wire.Context),
	}
	if wire.Insight != nil {
		out.Insight = strings.TrimSpace(*wire.Insight)
	}

	if err := outputValidator().Struct(out); err != nil {
		return Validated{}, fmt.Errorf("%w: %s", ErrInvalidOutput, describe(err))
	}
	if maxLen <= 0 {
		maxLen = model.MaxRefinedLength
	}
	if n := utf8.RuneCountInString(out.Refined); n > maxLen {
		return Validated{}, fmt.Errorf("%w: refined has %d characters, limit %d", ErrInvalidOutput, n, maxLen)
	}
	return out, nil
}

// collectTags prefers the tags array and accepts the single-tag form older
// prompts produced.
func collectTags(wire wireOutput) []string {
	src := wire.Tags
	if len(src) == 0 && wire.Tag != nil {
		src = []string{*wire.Tag}
	}
	tags := make([]string, 0, len(src))
	for _, t := range src {
		tags = append(tags, strings.TrimSpace(t))
	}
	return tags
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// extractObject trims prose around the outermost JSON object.
func extractObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(content[start : end+1])
	}
	return content
}
