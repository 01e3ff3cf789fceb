package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List context categories",
		Long:  "List the context categories memos are filed under, with labels for --locale.",
		Run:   runCategories,
	}

	cmd.Flags().String("locale", "", "Show labels for this locale (ko, ja, es, fr, de)")

	RootCmd.AddCommand(cmd)
}

type categoryRow struct {
	Name    string `json:"name"`
	Label   string `json:"label,omitempty"`
	Default bool   `json:"default,omitempty"`
}

func runCategories(cmd *cobra.Command, args []string) {
	locale, _ := cmd.Flags().GetString("locale")
	locale = languageFlag(locale)

	cfg := loadConfig()
	reg, err := loadTaxonomy(cfg)
	if err != nil {
		exitErr("load taxonomy", err)
	}

	rows := make([]categoryRow, 0, len(reg.Categories()))
	for _, c := range reg.Categories() {
		row := categoryRow{Name: c, Default: c == reg.DefaultCategory()}
		if locale != "" {
			row.Label = reg.Localize(c, locale)
		}
		rows = append(rows, row)
	}

	out := cmd.OutOrStdout()
	if !textOutput() {
		printJSON(out, rows)
		return
	}
	headers := []string{"Category"}
	if locale != "" {
		headers = append(headers, "Label")
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		name := r.Name
		if r.Default {
			name += " (default)"
		}
		line := []string{name}
		if locale != "" {
			line = append(line, r.Label)
		}
		table = append(table, line)
	}
	fmt.Fprintln(out, renderTable(headers, table, nil))
}
