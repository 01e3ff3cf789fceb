package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rcliao/mind-note/internal/language"
	"github.com/rcliao/mind-note/internal/model"
)

const previewRunes = 60

func textOutput() bool {
	return strings.EqualFold(formatFlag, "text")
}

func printJSON(w io.Writer, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitErr("encode output", err)
	}
	fmt.Fprintln(w, string(b))
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func memoTable(memos []model.Memo) string {
	rows := make([][]string, 0, len(memos))
	for _, m := range memos {
		rows = append(rows, []string{
			m.ID,
			m.CreatedAt.Local().Format("2006-01-02 15:04"),
			m.Context,
			strings.Join(m.Tags, " "),
			preview(m.Refined),
		})
	}
	return renderTable([]string{"ID", "Created", "Context", "Tags", "Memo"}, rows, nil)
}

func fieldTable(fields [][2]string) string {
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		rows = append(rows, []string{f[0], f[1]})
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func refinementFields(r model.Refinement) [][2]string {
	return [][2]string{
		{"Refined", r.Refined},
		{"Tags", strings.Join(r.Tags, " ")},
		{"Context", r.Context},
		{"Insight", r.Insight},
		{"Language", r.Language},
		{"Fallback", strconv.FormatBool(r.IsFallback)},
	}
}

func memoFields(m model.Memo) [][2]string {
	return [][2]string{
		{"ID", m.ID},
		{"Refined", m.Refined},
		{"Tags", strings.Join(m.Tags, " ")},
		{"Context", m.Context},
		{"Insight", m.Insight},
		{"Original", m.OriginalText},
		{"Audio", m.AudioURL},
		{"Language", m.Language},
		{"Fallback", strconv.FormatBool(m.IsFallback)},
		{"Version", strconv.Itoa(m.Version)},
		{"Created", m.CreatedAt.Local().Format("2006-01-02 15:04:05")},
		{"Updated", m.UpdatedAt.Local().Format("2006-01-02 15:04:05")},
	}
}

// preview flattens s onto one line and cuts it to previewRunes.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	return string([]rune(s)[:previewRunes-1]) + "…"
}

// readInput returns args joined by spaces, or stdin when no args are given
// and stdin is not a terminal.
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := stdin.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// languageFlag turns a --language value into a bare code, exiting on an
// unsupported language.
func languageFlag(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	code, ok := language.Parse(raw)
	if !ok {
		exitErr("language", fmt.Errorf("unsupported language %q", raw))
	}
	return code.String()
}

// languageLabel renders a stored code with its English name, e.g. "ko (Korean)".
func languageLabel(code string) string {
	if c, ok := language.Parse(code); ok {
		return fmt.Sprintf("%s (%s)", c, c.DisplayName())
	}
	return code
}
