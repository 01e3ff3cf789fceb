package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/mind-note/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memos by keyword",
		Long:  "Full-text search over refined text, original text and insight, best matches first.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().String("context", "", "Filter by context category")
	cmd.Flags().String("language", "", "Filter by language code")
	cmd.Flags().IntP("limit", "l", store.DefaultLimit, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("context")
	lang, _ := cmd.Flags().GetString("language")
	lang = languageFlag(lang)
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Query:    query,
		Context:  category,
		Language: lang,
		Limit:    limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	out := cmd.OutOrStdout()
	if textOutput() {
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{r.ID, r.Context, preview(r.Snippet)})
		}
		fmt.Fprintln(out, renderTable([]string{"ID", "Context", "Match"}, rows, nil))
		return
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "[]")
		return
	}
	printJSON(out, results)
}
