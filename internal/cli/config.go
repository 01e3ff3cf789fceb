package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/mind-note/internal/config"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		Run:   runConfigInit,
	}
	initCmd.Flags().String("path", "", "Where to write the file (default: --config or ~/.config/mind-note/config.toml)")
	initCmd.Flags().Bool("overwrite", false, "Replace an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Run:   runConfigValidate,
	}

	configCmd.AddCommand(initCmd, validateCmd)
	RootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	target, _ := cmd.Flags().GetString("path")
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	target = strings.TrimSpace(target)
	if target == "" {
		target = configPath
	}
	var err error
	if target == "" {
		target, err = config.DefaultConfigPath()
	} else {
		target, err = config.ExpandPath(target)
	}
	if err != nil {
		exitErr("resolve config path", err)
	}

	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			exitErr("config init", fmt.Errorf("%s already exists (use --overwrite to replace)", target))
		}
	}
	if err := config.CreateSample(target); err != nil {
		exitErr("config init", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg, path, exists, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config path: %s\n", path)
	if !exists {
		fmt.Fprintln(out, "Config file did not exist; defaults were used")
	}
	if err := cfg.ValidateLLM(); err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err)
	}
	fmt.Fprintln(out, "Configuration valid")
}
