package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/spf13/cobra"

	"github.com/iblwz/statllm/internal/deliver"
	"github.com/iblwz/statllm/internal/extract"
	"github.com/iblwz/statllm/internal/fetch"
	"github.com/iblwz/statllm/internal/pipeline"
	"github.com/iblwz/statllm/internal/projectconfig"
	"github.com/iblwz/statllm/internal/snapshot"
)

var (
	runInputPath  string
	runOutputPath string
	runDryRun     bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full leaderboard summary pipeline",
		Long: `Run one full pipeline invocation: fetch the configured sources, extract
and rank the leaderboard, diff against the prior snapshot, and deliver the
chunked summary.

With --input, a local markdown file replaces the configured sources, which
is useful for testing alias tables against a saved leaderboard.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringVar(&runInputPath, "input", "", "Local markdown file to ingest instead of the configured sources")
	cmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "Also write the rendered report to a file")
	cmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Print the report instead of delivering it; no state is written")

	return cmd
}

func runCommandE(cmd *cobra.Command, _ []string) error {
	cfg, err := projectconfig.Load(".")
	if err != nil {
		return err
	}

	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	runner.DryRun = runDryRun
	runner.Out = cmd.OutOrStdout()

	ctx := cmd.Context()

	var inputs []extract.Input
	if runInputPath != "" {
		data, err := os.ReadFile(runInputPath)
		if err != nil {
			return fmt.Errorf("reading input file: %w", err)
		}
		inputs = []extract.Input{{Table: string(data)}}
	} else {
		if len(cfg.Sources) == 0 {
			return fmt.Errorf("no sources configured; add a sources list to .statllm.yaml or pass --input")
		}
		inputs, err = runner.GatherInputs(ctx)
		if err != nil {
			return err
		}
	}

	res, err := runner.Run(ctx, inputs)
	if err != nil {
		return err
	}

	if runOutputPath != "" {
		text := strings.Join(res.Chunks, "\n---\n") + "\n"
		if err := os.WriteFile(runOutputPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing report file: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Summarized %d records into %d groups (%d message(s)).\n",
		res.Records, res.Groups, len(res.Chunks)) //nolint:errcheck
	return nil
}

// buildRunner wires the pipeline collaborators from config and environment.
func buildRunner(cfg *projectconfig.Config) (*pipeline.Runner, error) {
	fetcher := fetch.New()
	fetcher.Token = firstNonEmpty(cfg.GitHub.Token, os.Getenv("GITHUB_TOKEN"))

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	runner := &pipeline.Runner{
		Config:  cfg,
		Fetcher: fetcher,
		Store:   store,
		Date:    time.Now().Format("2006-01-02"),
	}

	if !runDryRun {
		token := firstNonEmpty(cfg.Telegram.Token, os.Getenv("TELEGRAM_BOT_TOKEN"))
		if token == "" || cfg.Telegram.ChatID == "" {
			return nil, fmt.Errorf("telegram delivery requires a bot token and chat_id (or use --dry-run)")
		}
		tg := deliver.NewTelegram(token, cfg.Telegram.ChatID)
		runner.Sink = tg
		runner.Notifier = tg
	}

	return runner, nil
}

func buildStore(cfg *projectconfig.Config) (snapshot.Store, error) {
	if az := cfg.Snapshot.Azure; az != nil {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("acquiring azure credential: %w", err)
		}
		return snapshot.NewBlobStore(az.ServiceURL, az.Container, az.Blob, cred)
	}
	return snapshot.NewFileStore(cfg.Snapshot.Path), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
