package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/mind-note/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memos, newest first",
		Run:   runList,
	}

	cmd.Flags().StringP("tags", "t", "", "Filter by tags (comma-separated, any match)")
	cmd.Flags().String("context", "", "Filter by context category")
	cmd.Flags().String("language", "", "Filter by language code")
	cmd.Flags().StringP("search", "s", "", "Filter by text")
	cmd.Flags().IntP("limit", "l", store.DefaultLimit, "Max results")
	cmd.Flags().Int("offset", 0, "Skip this many results")
	cmd.Flags().Bool("ids-only", false, "Only output memo IDs")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	tagsStr, _ := cmd.Flags().GetString("tags")
	category, _ := cmd.Flags().GetString("context")
	lang, _ := cmd.Flags().GetString("language")
	lang = languageFlag(lang)
	search, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if category != "" {
		reg, err := loadTaxonomy(cfg)
		if err != nil {
			exitErr("load taxonomy", err)
		}
		category = reg.Normalize(category)
	}

	res, err := s.List(cmd.Context(), store.ListParams{
		Tags:     splitTags(tagsStr),
		Context:  category,
		Language: lang,
		Search:   search,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		exitErr("list", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case idsOnly:
		for _, m := range res.Memos {
			fmt.Fprintln(out, m.ID)
		}
	case textOutput():
		fmt.Fprintln(out, memoTable(res.Memos))
		fmt.Fprintf(out, "%d-%d of %d\n", min(res.Offset+1, res.Total), res.Offset+len(res.Memos), res.Total)
	default:
		printJSON(out, res)
	}
}
