package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sectxt.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sectxt",
		Short: "Validate, normalize and sign security.txt files",
		Long: `sectxt validates RFC 9116 security.txt files and writes a canonical version.

Invalid lines are removed, repairable ones are fixed, the Expires field is
rewritten from the configured maximum age (bounded by the signing key
expiration) and every https URL is checked. The result can be clear-signed
with an OpenPGP key.

Every run is recorded in a local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .sectxt in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewSignCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
