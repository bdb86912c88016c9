package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/sectxt/internal/config"
	"github.com/nao1215/sectxt/internal/model"
	"github.com/nao1215/sectxt/internal/pipeline"
	"github.com/spf13/cobra"
)

// errChecksFailed makes the command exit non-zero when a document was
// rejected. The details are in the report.
var errChecksFailed = errors.New("one or more documents failed validation")

// errOutputNeedsSingleInput is returned for -o with several inputs.
var errOutputNeedsSingleInput = errors.New("--output requires exactly one input file")

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Validate and normalize security.txt files",
		Long: `Check validates security.txt files and prints the canonical version.

For every file it:
- Removes lines that are not comments or valid fields
- Repairs tel: URIs and reports the repair as a warning
- Keeps only the first Expires and Preferred-Languages field
- Rewrites Expires from --max-age, bounded by the signing key expiration
- Checks that every https URL answers 200 (through Tor for .onion hosts)
- Cross-checks openpgp4fpr: and key URLs against the signing key

A file that has no valid Contact field fails. Several files are checked
concurrently and reported in the order given. With no file, stdin is read.

Examples:
  # Check a file and print the report with the canonical document
  sectxt check .well-known/security.txt

  # Write the canonical document to a new file
  sectxt check security.txt -o security.clean.txt

  # Check without network access
  sectxt check --offline security.txt

  # Check several files and write a JSON report
  sectxt check --json --report report.json a.txt b.txt

  # Bound Expires by the expiration of the signing key
  sectxt check --key security@example.com --keyring team.asc security.txt`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	addValidationFlags(cmd)
	addReportFlags(cmd)
	cmd.Flags().StringP("output", "o", "",
		"Write the canonical document to this file (\"-\" for stdout)")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.OutputFile != "" && len(cfg.Inputs) != 1 {
		return errOutputNeedsSingleInput
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCheck(ctx, cmd, cfg)
}

// runCheck builds one pipeline per input and runs them through the batch
// processor.
func runCheck(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := setupLogger(cmd, cfg.Verbose)

	fetcher, cleanup, err := buildFetcher(ctx, cmd.ErrOrStderr(), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	_, key, err := loadSigningKey(cfg)
	if err != nil {
		return err
	}

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	factory := func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddSteps(
			pipeline.NewReadStep(
				pipeline.WithStdin(cmd.InOrStdin()),
				pipeline.WithMaxInputSize(cfg.MaxBodySize),
			),
			pipeline.NewValidateStep(fetcher,
				pipeline.WithSigningKey(key),
				pipeline.WithMaxAgeDays(cfg.MaxAgeDays),
				pipeline.WithFetchConcurrency(cfg.Concurrency),
				pipeline.WithValidateLogger(logger),
			),
		)
		if cfg.OutputFile != "" {
			p.AddStep(pipeline.NewWriteStep(cfg.OutputFile, pipeline.WithStdout(cmd.OutOrStdout())))
		}
		if db != nil {
			p.AddStep(pipeline.NewPersistStep(db, logger))
		}
		return p
	}

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)
	runs, err := bp.ProcessBatch(ctx, cfg.Inputs)
	if err != nil {
		return err
	}

	// The document goes to stdout with the report unless -o took it.
	showDocument := cfg.OutputFile == ""
	reportOut := cmd.OutOrStdout()
	if cfg.OutputFile == pipeline.StdinSource {
		reportOut = cmd.ErrOrStderr()
	}
	if err := outputReport(cfg, reportOut, completed(runs), showDocument); err != nil {
		return err
	}

	if countFailed(runs) > 0 {
		return errChecksFailed
	}
	return nil
}

// completed drops the runs that never started because of cancellation.
func completed(runs []*model.Run) []*model.Run {
	out := make([]*model.Run, 0, len(runs))
	for _, run := range runs {
		if run != nil {
			out = append(out, run)
		}
	}
	return out
}
