package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/mind-note/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a saved memo",
		Long:  "Edit fields of a saved memo. Only the flags given are changed; the version is bumped.",
		Args:  cobra.ExactArgs(1),
		Run:   runUpdate,
	}

	cmd.Flags().String("refined", "", "New memo text")
	cmd.Flags().StringP("tags", "t", "", "Replacement tags (comma-separated, 1-3)")
	cmd.Flags().String("context", "", "New context category")
	cmd.Flags().String("insight", "", "New insight")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	p := store.UpdateParams{ID: args[0]}
	flags := cmd.Flags()
	if flags.Changed("refined") {
		v, _ := flags.GetString("refined")
		p.Refined = &v
	}
	if flags.Changed("tags") {
		v, _ := flags.GetString("tags")
		p.Tags = splitTags(v)
		if p.Tags == nil {
			p.Tags = []string{}
		}
	}
	if flags.Changed("insight") {
		v, _ := flags.GetString("insight")
		p.Insight = &v
	}

	cfg := loadConfig()
	if flags.Changed("context") {
		v, _ := flags.GetString("context")
		reg, err := loadTaxonomy(cfg)
		if err != nil {
			exitErr("load taxonomy", err)
		}
		v = reg.Normalize(v)
		p.Context = &v
	}

	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m, err := s.Update(cmd.Context(), p)
	if err != nil {
		exitErr("update", err)
	}

	if textOutput() {
		fmt.Fprintln(cmd.OutOrStdout(), fieldTable(memoFields(*m)))
		return
	}
	printJSON(cmd.OutOrStdout(), m)
}
