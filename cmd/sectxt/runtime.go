package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/sectxt/internal/config"
	"github.com/nao1215/sectxt/internal/fetch"
	"github.com/nao1215/sectxt/internal/keys"
	"github.com/nao1215/sectxt/internal/model"
	"github.com/nao1215/sectxt/internal/report"
	"github.com/nao1215/sectxt/internal/store"
	"github.com/nao1215/sectxt/internal/tor"
)

// buildFetcher returns the fetcher for URL checks and a cleanup function
// that must be called when the command is done.
//
// Design decision: .onion URLs go through the configured SOCKS5 proxy
// without checking it up front. Most documents never reference an onion
// service, and requiring a running Tor for them would be hostile. The
// embedded daemon is started only with --tor.
func buildFetcher(ctx context.Context, w io.Writer, cfg *config.Config, logger *slog.Logger) (fetch.Fetcher, func(), error) {
	noop := func() {}
	if cfg.Offline {
		return fetch.Offline{}, noop, nil
	}

	var (
		torClient *tor.Client
		cleanup   = noop
		err       error
	)
	if cfg.UseEmbeddedTor {
		torClient, cleanup, err = startEmbeddedTor(ctx, w, cfg, logger)
		if err != nil {
			return nil, noop, err
		}
	} else {
		torClient, err = tor.NewClient(cfg.TorProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create Tor client: %w", err)
		}
	}

	client := fetch.NewClient(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithTor(torClient),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	)
	return client, cleanup, nil
}

// startEmbeddedTor starts an embedded Tor daemon using tornago.
func startEmbeddedTor(ctx context.Context, w io.Writer, cfg *config.Config, logger *slog.Logger) (*tor.Client, func(), error) {
	fmt.Fprintln(w, "Starting embedded Tor daemon...")
	fmt.Fprintf(w, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embeddedTor := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := embeddedTor.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	cleanup := func() {
		logger.Debug("stopping embedded Tor daemon")
		if err := embeddedTor.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}
	logger.Debug("embedded Tor daemon started", "socks_addr", embeddedTor.SocksAddr())

	client, err := embeddedTor.NewClient(cfg.Timeout)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}
	if err := client.CheckConnection(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %w", err)
	}
	return client, cleanup, nil
}

// loadSigningKey loads the keyring and resolves the configured key.
// Both results are nil when no key is configured.
func loadSigningKey(cfg *config.Config) (*keys.Ring, *model.SigningKey, error) {
	if cfg.KeyID == "" {
		return nil, nil, nil
	}
	ring, err := keys.LoadRing(cfg.KeyringPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load keyring: %w", err)
	}
	info, err := ring.KeyInfo(cfg.KeyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve signing key: %w", err)
	}
	return ring, &info, nil
}

// openHistory opens the history database, or returns nil when history
// is disabled.
func openHistory(cfg *config.Config, logger *slog.Logger) (*store.HistoryDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	db, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	logger.Debug("history database opened", "path", db.Path())
	return db, nil
}

// outputReport writes the report of runs in the requested format.
// With --report the chosen format goes to the file and a text summary
// still goes to out.
func outputReport(cfg *config.Config, out io.Writer, runs []*model.Run, showDocument bool) error {
	text := report.NewSimpleWriter(out,
		report.WithShowDocument(showDocument),
		report.WithVerbose(cfg.Verbose),
	)

	var w report.Writer = text
	if cfg.ReportFile != "" {
		f, err := createReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = report.NewMultiWriter(text, formatWriter(cfg, f, showDocument))
	} else if cfg.JSONReport || cfg.MarkdownReport {
		w = formatWriter(cfg, out, showDocument)
	}

	var err error
	if len(runs) == 1 {
		_, err = w.Write(runs[0])
	} else {
		_, err = w.WriteAll(runs)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func formatWriter(cfg *config.Config, out io.Writer, showDocument bool) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithShowDocument(showDocument))
	}
}

// createReportFile creates the report file and its parent directories.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, nil
}

// countFailed returns how many runs failed.
func countFailed(runs []*model.Run) int {
	n := 0
	for _, run := range runs {
		if run == nil || run.Failed() {
			n++
		}
	}
	return n
}
