package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcliao/mind-note/internal/logging"
	"github.com/rcliao/mind-note/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the refinement and memo API over HTTP",
		Run:   runServe,
	}

	cmd.Flags().String("bind", "", "Listen address (default: server.bind from config)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	bind, _ := cmd.Flags().GetString("bind")

	cfg := loadConfig()
	if bind == "" {
		bind = cfg.Server.Bind
	}
	reg, err := loadTaxonomy(cfg)
	if err != nil {
		exitErr("load taxonomy", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ctx, cfg, reg)
	if err != nil {
		exitErr("serve", err)
	}
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	log := logging.Named("http")
	log.Info().Str("db", s.Path()).Str("provider", cfg.LLM.Provider).Msg("starting server")

	srv := server.New(p, s, reg,
		server.WithLogger(log),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)
	if err := srv.Run(ctx, bind); err != nil {
		exitErr("serve", err)
	}
	log.Info().Msg("server stopped")
}
