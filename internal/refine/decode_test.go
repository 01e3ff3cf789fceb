package refine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAccepts(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Validated
	}{
		{
			name: "plain object",
			raw:  okJSON,
			want: Validated{
				Refined: "Tomorrow's shopping list: milk, bread, and eggs.",
				Tags:    []string{"#shopping", "#daily-log"},
				Context: "Work Memo",
				Insight: "Set a reminder.",
			},
		},
		{
			name: "json code fence",
			raw:  "```json\n{\"refined\":\"Hi.\",\"tags\":[\"#memo\"],\"context\":\"Idea\"}\n```",
			want: Validated{Refined: "Hi.", Tags: []string{"#memo"}, Context: "Idea"},
		},
		{
			name: "bare code fence",
			raw:  "```\n{\"refined\":\"Hi.\",\"tags\":[\"#memo\"],\"context\":\"Idea\"}\n```",
			want: Validated{Refined: "Hi.", Tags: []string{"#memo"}, Context: "Idea"},
		},
		{
			name: "prose around object",
			raw:  "Here you go:\n{\"refined\":\"Hi.\",\"tags\":[\"#memo\"],\"context\":\"Idea\"}\nThanks!",
			want: Validated{Refined: "Hi.", Tags: []string{"#memo"}, Context: "Idea"},
		},
		{
			name: "trailing prose after object",
			raw:  "{\"refined\":\"Hi.\",\"tags\":[\"#memo\"],\"context\":\"Idea\"}\n\nHope this helps!",
			want: Validated{Refined: "Hi.", Tags: []string{"#memo"}, Context: "Idea"},
		},
		{
			name: "legacy single tag",
			raw:  `{"refined":"Hi.","tag":"#아이디어","context":"아이디어","insight":""}`,
			want: Validated{Refined: "Hi.", Tags: []string{"#아이디어"}, Context: "아이디어"},
		},
		{
			name: "null insight and empty context",
			raw:  `{"refined":"Hi.","tags":["#memo"],"context":"","insight":null}`,
			want: Validated{Refined: "Hi.", Tags: []string{"#memo"}, Context: ""},
		},
		{
			name: "unknown fields ignored",
			raw:  `{"refined":"Hi.","tags":["#memo"],"context":"Idea","mood":"calm"}`,
			want: Validated{Refined: "Hi.", Tags: []string{"#memo"}, Context: "Idea"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.raw, 1000)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]string{
		"empty":            "   ",
		"not json":         "I could not do that.",
		"truncated":        `{"refined":"Hi.","tags":["#memo"]`,
		"missing refined":  `{"tags":["#memo"],"context":"Idea"}`,
		"blank refined":    `{"refined":"  ","tags":["#memo"],"context":"Idea"}`,
		"missing context":  `{"refined":"Hi.","tags":["#memo"]}`,
		"refined wrong":    `{"refined":42,"tags":["#memo"],"context":"Idea"}`,
		"context wrong":    `{"refined":"Hi.","tags":["#memo"],"context":["Idea"]}`,
		"insight wrong":    `{"refined":"Hi.","tags":["#memo"],"context":"Idea","insight":7}`,
		"no tags":          `{"refined":"Hi.","context":"Idea"}`,
		"empty tags":       `{"refined":"Hi.","tags":[],"context":"Idea"}`,
		"too many tags":    `{"refined":"Hi.","tags":["#a","#b","#c","#d"],"context":"Idea"}`,
		"blank tag item":   `{"refined":"Hi.","tags":["#a"," "],"context":"Idea"}`,
		"blank legacy tag": `{"refined":"Hi.","tag":"","context":"Idea"}`,
		"array payload":    `[{"refined":"Hi."}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw, 1000)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOutput)
		})
	}
}

func TestDecodeLengthBoundCountsRunes(t *testing.T) {
	build := func(n int) string {
		return `{"refined":"` + strings.Repeat("가", n) + `","tags":["#메모"],"context":"기억보관"}`
	}
	got, err := Decode(build(1000), 1000)
	require.NoError(t, err)
	assert.Len(t, []rune(got.Refined), 1000)

	_, err = Decode(build(1001), 1000)
	require.ErrorIs(t, err, ErrInvalidOutput)
	assert.Contains(t, err.Error(), "limit 1000")
}

func TestDecodeDefaultLimit(t *testing.T) {
	raw := `{"refined":"` + strings.Repeat("a", 1001) + `","tags":["#memo"],"context":"Idea"}`
	_, err := Decode(raw, 0)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestDecodeReportsFieldNames(t *testing.T) {
	_, err := Decode(`{"refined":"Hi.","tags":["#a","#b","#c","#d"],"context":"Idea"}`, 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tags")
}
