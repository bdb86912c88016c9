package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/sectxt/internal/report"
	"github.com/nao1215/sectxt/internal/store"
	"github.com/spf13/cobra"
)

// shortIDLength is how much of a run ID the listing shows. Any unique
// prefix is accepted by --show.
const shortIDLength = 8

// errDiffNeedsFile is returned for --diff without a file argument.
var errDiffNeedsFile = errors.New("--diff requires a file argument")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "Show recorded check and sign runs",
		Long: `History lists the runs recorded in the history database, newest first.

Every check and sign run stores the canonical document, the diagnostics,
the resolved expiration and the signing key fingerprint.

Examples:
  # List every recorded run
  sectxt history

  # List the runs of one file
  sectxt history .well-known/security.txt

  # Print the document stored by a run (any unique ID prefix works)
  sectxt history --show 3f2a9c1e

  # Compare the documents of the latest two successful runs of a file
  sectxt history --diff .well-known/security.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("show", "s", "",
		"Print the document of the run with this ID")
	cmd.Flags().BoolP("diff", "d", false,
		"Compare the latest two successful runs of the file")
	cmd.Flags().IntP("limit", "l", 20,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolP("json", "j", false,
		"Print the run selected by --show as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}

	showID, err := cmd.Flags().GetString("show")
	if err != nil {
		return err
	}
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	var source string
	if len(args) == 1 {
		source = inputPath(args[0])
	}
	if diff && source == "" {
		return errDiffNeedsFile
	}

	db, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch {
	case showID != "":
		return showRun(ctx, out, db, showID, cfg.JSONReport)
	case diff:
		return diffRuns(ctx, out, db, source)
	default:
		return listRuns(ctx, out, db, source, limit)
	}
}

// listRuns prints a table of recorded runs.
func listRuns(ctx context.Context, out io.Writer, db *store.HistoryDB, source string, limit int) error {
	runs, err := db.ListRuns(ctx, source, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		if source != "" {
			fmt.Fprintf(out, "No runs recorded for %s\n", source)
		} else {
			fmt.Fprintln(out, "No runs recorded.")
		}
		fmt.Fprintln(out, "\nUse 'sectxt check <file>' to check a security.txt file.")
		return nil
	}

	fmt.Fprintf(out, "  %-8s  %-19s  %-6s  %-4s  %-4s  %-20s  %s\n",
		"ID", "Date", "Status", "Warn", "Err", "Expires", "File")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))
	for _, meta := range runs {
		status := "ok"
		switch {
		case !meta.Succeeded:
			status = "failed"
		case meta.Signed:
			status = "signed"
		}
		fmt.Fprintf(out, "  %-8s  %-19s  %-6s  %-4d  %-4d  %-20s  %s\n",
			shortID(meta.ID),
			meta.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			meta.Warnings,
			meta.Errors,
			meta.Expires,
			meta.Source,
		)
	}

	fmt.Fprintln(out, "\nUse 'sectxt history --show <id>' to print a stored document.")
	return nil
}

// showRun prints the stored document of one run, or the whole run as JSON.
func showRun(ctx context.Context, out io.Writer, db *store.HistoryDB, id string, asJSON bool) error {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}

	if asJSON {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).Write(run)
		return err
	}
	if run.Result == nil || run.Result.Document == "" {
		_, err := report.NewSimpleWriter(out).Write(run)
		return err
	}
	_, err = io.WriteString(out, run.Result.Document)
	return err
}

// diffRuns compares the documents of the latest two successful runs.
//
// Design decision: The line diff comes from go-cmp. Its output format is
// not guaranteed to be stable, which is fine for a human-facing view and
// saves us a diff implementation.
func diffRuns(ctx context.Context, out io.Writer, db *store.HistoryDB, source string) error {
	latest, previous, err := db.LatestDocuments(ctx, source)
	if err != nil {
		return err
	}
	if previous == "" {
		fmt.Fprintf(out, "Only one successful run recorded for %s\n", source)
		return nil
	}

	diff := cmp.Diff(splitDocument(previous), splitDocument(latest))
	if diff == "" {
		fmt.Fprintln(out, "No changes between the latest two runs.")
		return nil
	}
	fmt.Fprintf(out, "Changes in %s (-previous +latest):\n%s", source, diff)
	return nil
}

func splitDocument(doc string) []string {
	return strings.Split(strings.TrimSuffix(doc, "\n"), "\n")
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}
