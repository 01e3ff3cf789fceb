package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/mind-note/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	out := cmd.OutOrStdout()
	if !textOutput() {
		printJSON(out, stats)
		return
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Database", "Size", "Active", "Deleted", "Fallback"},
		[][]string{{
			stats.DBPath,
			strconv.FormatInt(stats.DBSizeBytes, 10),
			strconv.Itoa(stats.ActiveMemos),
			strconv.Itoa(stats.TotalMemos - stats.ActiveMemos),
			strconv.Itoa(stats.FallbackMemos),
		}},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	fmt.Fprintln(out, countTable("Context", stats.Contexts))
	langs := make([]store.Count, len(stats.Languages))
	for i, c := range stats.Languages {
		langs[i] = store.Count{Name: languageLabel(c.Name), Count: c.Count}
	}
	fmt.Fprintln(out, countTable("Language", langs))
}

func countTable(label string, counts []store.Count) string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count)})
	}
	return renderTable([]string{label, "Memos"}, rows, []columnAlignment{alignLeft, alignRight})
}
