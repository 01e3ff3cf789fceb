package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export memos as JSON",
		Long:  "Export all active memos, oldest first, as a JSON array. Filter by context with --context.",
		Run:   runExport,
	}

	cmd.Flags().String("context", "", "Filter by context category")
	cmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("context")
	output, _ := cmd.Flags().GetString("output")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memos, err := s.ExportAll(cmd.Context(), category)
	if err != nil {
		exitErr("export", err)
	}

	if output == "" {
		printJSON(cmd.OutOrStdout(), memos)
		return
	}
	f, err := os.Create(output)
	if err != nil {
		exitErr("create output", err)
	}
	defer f.Close()
	printJSON(f, memos)
}
