package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Code
	}{
		{"empty", "", English},
		{"plain english", "test msg for me", English},
		{"digits only", "1234 5678", English},
		{"korean", "아이디어 정리", Korean},
		{"korean mixed with latin", "meeting 회의 notes at 3pm", Korean},
		{"korean jamo", "ㅋㅋㅋ funny", Korean},
		{"hiragana", "きょうは会議があります", Japanese},
		{"katakana", "プロジェクト update", Japanese},
		{"han only", "会議記録", Japanese},
		{"spanish tilde", "mañana comprar pan", Spanish},
		{"spanish inverted question", "¿dónde está la reunión?", Spanish},
		{"spanish acute", "reunión con el equipo", Spanish},
		{"german eszett", "Straße reparieren", German},
		{"german umlaut", "Für morgen planen", German},
		{"french cedilla", "ça va bien", French},
		{"french grave", "à demain", French},
		{"french acute only", "réunion terminée", French},
		{"uppercase accents", "MAÑANA", Spanish},
		{"hangul beats kana", "こんにちは 안녕", Korean},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Detect(tc.text))
		})
	}
}

func TestDetectIsStableOnRewrites(t *testing.T) {
	pairs := [][2]string{
		{"회의 괜찮았음 프로젝트 일정이랑 예산 얘기함", "회의가 원활하게 진행되었습니다. 프로젝트 일정과 예산 관련 사항을 논의했습니다."},
		{"need buy milk bread eggs tmrw", "Tomorrow's shopping list: milk, bread, and eggs"},
		{"内容をまとめる", "会議の内容をまとめました。"},
	}
	for _, p := range pairs {
		assert.Equal(t, Detect(p[0]), Detect(p[1]), "raw %q vs refined %q", p[0], p[1])
	}
}

func TestParse(t *testing.T) {
	code, ok := Parse("ko-KR")
	require.True(t, ok)
	assert.Equal(t, Korean, code)

	code, ok = Parse("de")
	require.True(t, ok)
	assert.Equal(t, German, code)

	_, ok = Parse("zh")
	assert.False(t, ok)

	_, ok = Parse("")
	assert.False(t, ok)

	_, ok = Parse("not a tag!")
	assert.False(t, ok)
}

func TestMetadata(t *testing.T) {
	assert.Equal(t, "Korean", Korean.DisplayName())
	assert.Equal(t, "English", English.DisplayName())
	assert.Equal(t, "#메모", FallbackTag(Korean))
	assert.Equal(t, "#memo", FallbackTag(English))
	assert.Equal(t, "#memo", FallbackTag(Code("xx")))
	assert.Len(t, Supported(), 6)
	for _, c := range Supported() {
		assert.NotEmpty(t, FallbackTag(c))
	}
}
