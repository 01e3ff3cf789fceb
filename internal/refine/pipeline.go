// Package refine turns raw memo text into a structured refinement: detect the
// language, build a prompt, call the generator with retries, validate and
// normalize the answer, and fall back to a deterministic result when the
// generator cannot deliver.
package refine

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rcliao/mind-note/internal/language"
	"github.com/rcliao/mind-note/internal/llm"
	"github.com/rcliao/mind-note/internal/model"
	"github.com/rcliao/mind-note/internal/prompt"
	"github.com/rcliao/mind-note/internal/taxonomy"
)

// Pipeline is safe for concurrent use; it holds no per-request state.
type Pipeline struct {
	inv *Invoker
	reg *taxonomy.Registry
	s   settings
}

// NewPipeline wires gen and reg into a pipeline. A nil reg means the
// embedded default taxonomy.
func NewPipeline(gen llm.Generator, reg *taxonomy.Registry, opts ...Option) *Pipeline {
	if reg == nil {
		reg = taxonomy.Default()
	}
	inv := NewInvoker(gen, opts...)
	return &Pipeline{inv: inv, reg: reg, s: inv.s}
}

// Taxonomy returns the registry used for normalization.
func (p *Pipeline) Taxonomy() *taxonomy.Registry { return p.reg }

// Refine returns a refinement for text. The only error is ErrInvalidInput;
// generator failures produce a fallback result instead.
func (p *Pipeline) Refine(ctx context.Context, text string) (model.Refinement, error) {
	if strings.TrimSpace(text) == "" {
		return model.Refinement{}, ErrInvalidInput
	}

	log := p.s.logger.With().Str("refine_id", uuid.NewString()).Logger()
	ctx = log.WithContext(ctx)

	lang := language.Detect(text)
	log.Debug().
		Str("language", string(lang)).
		Int("chars", utf8.RuneCountInString(text)).
		Msg("refining memo")

	out := p.inv.Invoke(ctx, prompt.BuildWithLimit(lang, text, p.s.maxLen))
	if out.State != StateSucceeded {
		log.Warn().Err(out.Err()).
			Int("attempts", len(out.Attempts)).
			Msg("refinement exhausted, using fallback")
		return Synthesize(text, lang, p.reg, p.s.maxLen), nil
	}

	return p.finish(log, out, lang, text), nil
}

func (p *Pipeline) finish(log zerolog.Logger, out Outcome, lang language.Code, text string) model.Refinement {
	category := p.reg.Normalize(out.Value.Context)
	if category != out.Value.Context {
		log.Debug().Str("raw_context", out.Value.Context).Str("context", category).Msg("context normalized")
	}
	log.Info().Int("attempts", len(out.Attempts)).Str("context", category).Msg("memo refined")
	return model.Refinement{
		Refined:      out.Value.Refined,
		Tags:         dedupe(out.Value.Tags),
		Context:      category,
		Insight:      out.Value.Insight,
		Language:     string(lang),
		OriginalText: text,
		IsFallback:   false,
	}
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
