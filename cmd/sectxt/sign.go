package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nao1215/sectxt/internal/config"
	"github.com/nao1215/sectxt/internal/keys"
	"github.com/nao1215/sectxt/internal/model"
	"github.com/nao1215/sectxt/internal/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// passphraseEnv holds the key passphrase for non-interactive signing.
const passphraseEnv = "SECTXT_PASSPHRASE"

var (
	// errKeyRequired is returned when sign runs without --key.
	errKeyRequired = errors.New("--key is required for signing")

	// errNotInteractive is returned when a prompt is needed but stdin is
	// not a terminal.
	errNotInteractive = errors.New("confirmation needs a terminal (use --yes)")

	// errNoPassphrase is returned when the key is encrypted and no
	// passphrase source is available.
	errNoPassphrase = fmt.Errorf("key is encrypted: set %s or run in a terminal", passphraseEnv)
)

// NewSignCmd creates the sign command.
func NewSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign <file>",
		Short: "Validate, normalize and clear-sign a security.txt file",
		Long: `Sign validates a security.txt file like check, shows the canonical
document, asks for confirmation and writes it clear-signed with an OpenPGP key.

The output is written only after signing succeeded. Without --output the
input file is replaced. An encrypted key is unlocked with the passphrase in
SECTXT_PASSPHRASE, or with a terminal prompt.

Examples:
  # Sign in place after confirmation
  sectxt sign --key security@example.com --keyring team.asc security.txt

  # Sign without asking and write to another file
  sectxt sign --yes -k 0x1234ABCD -K team.asc -o signed.txt security.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runSignCmd,
	}

	addValidationFlags(cmd)
	addReportFlags(cmd)
	cmd.Flags().StringP("output", "o", "",
		"Write the signed document to this file (default: replace the input, \"-\" for stdout)")
	cmd.Flags().BoolP("yes", "y", false,
		"Sign without asking for confirmation")

	return cmd
}

// runSignCmd executes the sign command.
func runSignCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.KeyID == "" {
		return errKeyRequired
	}
	if cfg.Inputs[0] == pipeline.StdinSource && !cfg.AssumeYes {
		return errNotInteractive
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSign(ctx, cmd, cfg)
}

// runSign runs read, validate, confirm, sign, write and persist on the
// single input.
func runSign(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := setupLogger(cmd, cfg.Verbose)

	fetcher, cleanup, err := buildFetcher(ctx, cmd.ErrOrStderr(), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ring, key, err := loadSigningKey(cfg)
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

	signer := keys.NewSigner(ring,
		keys.WithPassphrase(passphraseFunc(cmd.ErrOrStderr())),
		keys.WithSignerLogger(logger),
	)

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
		pipeline.NewConfirmStep(confirmFunc(cmd, cfg)),
		pipeline.NewSignStep(signer, key.Fingerprint, pipeline.WithSignLogger(logger)),
		pipeline.NewWriteStep(cfg.OutputFile, pipeline.WithStdout(cmd.OutOrStdout())),
	)
	if db != nil {
		p.AddStep(pipeline.NewPersistStep(db, logger))
	}

	run := model.NewRun(cfg.Inputs[0])
	execErr := p.Execute(ctx, run)

	reportOut := cmd.OutOrStdout()
	if writesToStdout(cfg, run) {
		reportOut = cmd.ErrOrStderr()
	}
	if err := outputReport(cfg, reportOut, []*model.Run{run}, false); err != nil {
		return err
	}

	if execErr != nil {
		return execErr
	}
	if run.Failed() {
		return errChecksFailed
	}
	fmt.Fprintf(reportOut, "Signed with key %s\n", key.Fingerprint)
	return nil
}

// writesToStdout reports whether the signed document goes to stdout.
func writesToStdout(cfg *config.Config, run *model.Run) bool {
	if cfg.OutputFile != "" {
		return cfg.OutputFile == pipeline.StdinSource
	}
	return run.Source == pipeline.StdinSource
}

// confirmFunc shows the canonical document and asks before signing.
// --yes skips the question.
func confirmFunc(cmd *cobra.Command, cfg *config.Config) pipeline.ConfirmFunc {
	if cfg.AssumeYes {
		return nil
	}
	in := cmd.InOrStdin()
	out := cmd.ErrOrStderr()

	return func(run *model.Run) (bool, error) {
		if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
			return false, errNotInteractive
		}

		fmt.Fprintf(out, "\n%s\n", run.Result.Document)
		fmt.Fprint(out, "Sign this document? [y/N]: ")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

// passphraseFunc reads the key passphrase from the environment, or
// prompts on the terminal without echo.
func passphraseFunc(out io.Writer) keys.PassphraseFunc {
	return func(fingerprint string) ([]byte, error) {
		if pass, ok := os.LookupEnv(passphraseEnv); ok {
			return []byte(pass), nil
		}

		fd := int(os.Stdin.Fd()) //nolint:gosec // fd fits in int
		if !term.IsTerminal(fd) {
			return nil, errNoPassphrase
		}
		fmt.Fprintf(out, "Passphrase for key %s: ", fingerprint)
		pass, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		return pass, nil
	}
}
