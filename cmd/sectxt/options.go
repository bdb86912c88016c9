package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/sectxt/internal/config"
	"github.com/nao1215/sectxt/internal/log"
	"github.com/nao1215/sectxt/internal/pipeline"
	"github.com/spf13/cobra"
)

// addValidationFlags registers the flags shared by check and sign.
func addValidationFlags(cmd *cobra.Command) {
	// Policy flags
	cmd.Flags().IntP("max-age", "a", config.DefaultMaxAgeDays,
		"Maximum lifetime of the document in days")
	cmd.Flags().StringP("key", "k", "",
		"Signing key (fingerprint, key ID suffix or user ID)")
	cmd.Flags().StringP("keyring", "K", "",
		"OpenPGP keyring file holding the signing key")

	// Network flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each URL check")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of concurrent URL checks and files")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for URL checks")
	cmd.Flags().Bool("offline", false,
		"Skip network checks (https fields are kept with a warning)")
	cmd.Flags().String("tor-proxy", config.DefaultTorProxyAddress,
		"Tor SOCKS5 proxy used for .onion URLs")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon for .onion URLs")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")
}

// addReportFlags registers the report format flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write report to specified file path (creates directories if needed)")
}

// buildConfig creates a Config from defaults, the configuration file and
// the flags, in that order of precedence.
//
// Design decision: Flags override the file only when they were given on
// the command line. Otherwise a flag's default would silently replace a
// value the user wrote in .sectxt.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not found.
	// If no path was specified, run with defaults when no file is found.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Inputs = make([]string, 0, len(args))
	for _, arg := range args {
		cfg.Inputs = append(cfg.Inputs, inputPath(arg))
	}
	if len(cfg.Inputs) == 0 {
		cfg.Inputs = []string{pipeline.StdinSource}
	}
	return cfg, nil
}

// applyFlags copies every flag the command defines and the user set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	var err error
	if changed("max-age") {
		if cfg.MaxAgeDays, err = flags.GetInt("max-age"); err != nil {
			return err
		}
	}
	if changed("key") {
		if cfg.KeyID, err = flags.GetString("key"); err != nil {
			return err
		}
	}
	if changed("keyring") {
		if cfg.KeyringPath, err = flags.GetString("keyring"); err != nil {
			return err
		}
	}
	if changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if changed("offline") {
		if cfg.Offline, err = flags.GetBool("offline"); err != nil {
			return err
		}
	}
	if changed("tor-proxy") {
		if cfg.TorProxyAddress, err = flags.GetString("tor-proxy"); err != nil {
			return err
		}
	}
	if changed("tor") {
		if cfg.UseEmbeddedTor, err = flags.GetBool("tor"); err != nil {
			return err
		}
	}
	if changed("tor-timeout") {
		if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
			return err
		}
	}
	if changed("no-history") {
		noHistory, err := flags.GetBool("no-history")
		if err != nil {
			return err
		}
		cfg.SaveToDB = !noHistory
	}
	if changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return err
		}
	}
	if changed("json") {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return err
		}
	}
	if changed("markdown") {
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return err
		}
	}
	if changed("report") {
		if cfg.ReportFile, err = flags.GetString("report"); err != nil {
			return err
		}
	}
	if changed("output") {
		if cfg.OutputFile, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if changed("yes") {
		if cfg.AssumeYes, err = flags.GetBool("yes"); err != nil {
			return err
		}
	}
	return nil
}

// inputPath makes file arguments absolute so history lookups match no
// matter which directory the command ran in.
func inputPath(arg string) string {
	if arg == pipeline.StdinSource {
		return arg
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return arg
	}
	return abs
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the redacting structured logger on stderr.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	w := cmd.ErrOrStderr()
	if w == nil {
		w = os.Stderr
	}
	return log.NewSecureLogger(w, verbose)
}
