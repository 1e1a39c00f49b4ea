package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iblwz/statllm/internal/validation"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [config-file]",
		Short: "Validate a .statllm.yaml configuration file",
		Long: `Validate a configuration file against the shipped JSON Schema and report
every violation with its location.

With no argument, checks .statllm.yaml in the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: checkCommandE,
	}
	return cmd
}

func checkCommandE(cmd *cobra.Command, args []string) error {
	path := ".statllm.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file %s not found", path)
	}

	errs, err := validation.ValidateConfigFile(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(errs) == 0 {
		fmt.Fprintf(out, "%s is valid.\n", path) //nolint:errcheck
		return nil
	}

	fmt.Fprintf(out, "%s has %d problem(s):\n", path, len(errs)) //nolint:errcheck
	for _, e := range errs {
		fmt.Fprintf(out, "  - %s\n", e) //nolint:errcheck
	}
	return fmt.Errorf("configuration is not valid")
}
