// Package cli implements the mind-note CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/mind-note/internal/config"
	"github.com/rcliao/mind-note/internal/llm"
	"github.com/rcliao/mind-note/internal/logging"
	"github.com/rcliao/mind-note/internal/refine"
	"github.com/rcliao/mind-note/internal/store"
	"github.com/rcliao/mind-note/internal/taxonomy"
)

var (
	dbPath     string
	configPath string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "mind-note",
	Short: "Turn rough notes into structured memos",
	Long: "Refines raw voice or text notes into a clean memo with tags, a context category " +
		"and an insight, and keeps them in a local SQLite archive.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $MIND_NOTE_DB or store.path from config)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $MIND_NOTE_CONFIG or ~/.config/mind-note/config.toml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// loadConfig reads the config file and initializes logging from it.
func loadConfig() *config.Config {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	logging.Init(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	return cfg
}

func getDBPath(cfg *config.Config) string {
	if dbPath != "" {
		if p, err := config.ExpandPath(dbPath); err == nil {
			return p
		}
		return dbPath
	}
	return cfg.Store.Path
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath(cfg))
}

func loadTaxonomy(cfg *config.Config) (*taxonomy.Registry, error) {
	if cfg.Taxonomy.Path == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.LoadFile(cfg.Taxonomy.Path)
}

func newPipeline(ctx context.Context, cfg *config.Config, reg *taxonomy.Registry) (*refine.Pipeline, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, err
	}
	gen, err := llm.New(ctx, cfg.GenerationConfig())
	if err != nil {
		return nil, err
	}
	return refine.NewPipeline(gen, reg,
		refine.WithModel(cfg.LLM.Model),
		refine.WithTemperature(float32(cfg.LLM.Temperature)),
		refine.WithMaxTokens(cfg.LLM.MaxTokens),
		refine.WithMaxAttempts(cfg.Refine.MaxAttempts),
		refine.WithRetryDelay(cfg.RetryDelay()),
		refine.WithAttemptTimeout(cfg.AttemptTimeout()),
		refine.WithMaxRefinedLength(cfg.Refine.MaxRefinedLength),
		refine.WithLogger(logging.Named("refine")),
	), nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
