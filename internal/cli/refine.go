package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/mind-note/internal/model"
	"github.com/rcliao/mind-note/internal/refine"
	"github.com/rcliao/mind-note/internal/store"
)

func init() {
	refineCmd := &cobra.Command{
		Use:   "refine [text]",
		Short: "Refine a note without saving it",
		Long:  "Refine a note into a structured memo. Text can be a positional arg or piped via stdin.",
		Run:   runRefine,
	}

	addCmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Refine a note and save it",
		Long: "Refine a note and store the result. With --file, every non-blank line of the file " +
			"is refined concurrently and saved as its own memo.",
		Run: runAdd,
	}
	addCmd.Flags().String("file", "", "Batch mode: file with one note per line (- for stdin)")
	addCmd.Flags().String("audio-url", "", "URL of the source recording")

	RootCmd.AddCommand(refineCmd, addCmd)
}

func runRefine(cmd *cobra.Command, args []string) {
	text, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		exitErr("read stdin", err)
	}

	cfg := loadConfig()
	reg, err := loadTaxonomy(cfg)
	if err != nil {
		exitErr("load taxonomy", err)
	}
	p, err := newPipeline(cmd.Context(), cfg, reg)
	if err != nil {
		exitErr("refine", err)
	}

	res, err := p.Refine(cmd.Context(), text)
	if errors.Is(err, refine.ErrInvalidInput) {
		exitErr("refine", fmt.Errorf("text is required (positional arg or stdin)"))
	}
	if err != nil {
		exitErr("refine", err)
	}

	out := cmd.OutOrStdout()
	if textOutput() {
		fmt.Fprintln(out, fieldTable(refinementFields(res)))
		return
	}
	printJSON(out, res)
}

type batchItem struct {
	Index int         `json:"index"`
	Memo  *model.Memo `json:"memo,omitempty"`
	Error string      `json:"error,omitempty"`
}

func runAdd(cmd *cobra.Command, args []string) {
	file, _ := cmd.Flags().GetString("file")
	audioURL, _ := cmd.Flags().GetString("audio-url")

	var texts []string
	if file != "" {
		lines, err := readLines(cmd, file)
		if err != nil {
			exitErr("read file", err)
		}
		texts = lines
	} else {
		text, err := readInput(args, cmd.InOrStdin())
		if err != nil {
			exitErr("read stdin", err)
		}
		if strings.TrimSpace(text) == "" {
			exitErr("add", fmt.Errorf("text is required (positional arg, stdin or --file)"))
		}
		texts = []string{text}
	}

	cfg := loadConfig()
	reg, err := loadTaxonomy(cfg)
	if err != nil {
		exitErr("load taxonomy", err)
	}
	p, err := newPipeline(cmd.Context(), cfg, reg)
	if err != nil {
		exitErr("add", err)
	}
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results := p.RefineBatch(cmd.Context(), texts, cfg.Refine.BatchConcurrency)
	items := make([]batchItem, 0, len(results))
	var saved []model.Memo
	for _, r := range results {
		item := batchItem{Index: r.Index}
		if r.Err != nil {
			item.Error = r.Err.Error()
			items = append(items, item)
			continue
		}
		m, err := s.Create(cmd.Context(), createParams(r.Refinement, audioURL))
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Memo = m
			saved = append(saved, *m)
		}
		items = append(items, item)
	}

	out := cmd.OutOrStdout()
	if file == "" {
		if items[0].Error != "" {
			exitErr("add", errors.New(items[0].Error))
		}
		if textOutput() {
			fmt.Fprintln(out, fieldTable(memoFields(*items[0].Memo)))
			return
		}
		printJSON(out, items[0].Memo)
		return
	}

	if textOutput() {
		fmt.Fprintln(out, memoTable(saved))
		fmt.Fprintf(out, "saved %d of %d\n", len(saved), len(items))
		return
	}
	printJSON(out, items)
}

func createParams(r model.Refinement, audioURL string) store.CreateParams {
	return store.CreateParams{
		Refined:      r.Refined,
		Tags:         r.Tags,
		Context:      r.Context,
		Insight:      r.Insight,
		OriginalText: r.OriginalText,
		AudioURL:     audioURL,
		Language:     r.Language,
		IsFallback:   r.IsFallback,
	}
}

// readLines returns the non-blank lines of path, or of stdin for "-".
func readLines(cmd *cobra.Command, path string) ([]string, error) {
	var sc *bufio.Scanner
	if path == "-" {
		sc = bufio.NewScanner(cmd.InOrStdin())
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sc = bufio.NewScanner(f)
	}
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s has no notes", path)
	}
	return lines, nil
}
