package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iblwz/statllm/internal/wizard"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a .statllm.yaml through a guided wizard",
		Long: `Create a .statllm.yaml configuration file by answering a short series of
questions: the leaderboard source, the Telegram chat, and the report shape.

If no directory is specified, the current directory is used. An existing
.statllm.yaml is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: initCommandE,
	}
	return cmd
}

func initCommandE(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, ".statllm.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first to re-initialize", configPath)
	}

	spec, err := wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	content, err := wizard.GenerateConfigYAML(spec)
	if err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath) //nolint:errcheck
	fmt.Fprintln(cmd.OutOrStdout(), "Set TELEGRAM_BOT_TOKEN before the first delivery run.") //nolint:errcheck
	return nil
}
