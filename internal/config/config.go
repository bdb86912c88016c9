package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultMaxAgeDays keeps documents just under the one year RFC 9116
	// recommends as the upper bound for Expires.
	DefaultMaxAgeDays = 364

	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	// We use 127.0.0.1 instead of localhost to avoid DNS resolution and
	// IPv6 surprises on some systems.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultTimeout bounds each URL check. Referenced pages are ordinary
	// web resources, so clearnet latency applies.
	DefaultTimeout = 10 * time.Second

	// DefaultConcurrency is the number of URL checks run in parallel, and
	// the number of files processed in parallel by "check".
	DefaultConcurrency = 8

	// AppName is the application name used for XDG directory paths.
	AppName = "sectxt"

	// DefaultUserAgent identifies sectxt in HTTP requests so operators can
	// tell validator traffic apart in their logs.
	DefaultUserAgent = "sectxt/1.0 (+https://github.com/nao1215/sectxt)"

	// DefaultMaxBodySize limits how much of a key document is read.
	// 1MB holds any realistic public key block.
	DefaultMaxBodySize = 1024 * 1024

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Config holds all configuration options for sectxt.
// This struct is populated from the config file and CLI flags and passed
// through the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is manageable and the CLI maps onto it directly.
type Config struct {
	// Inputs is the list of security.txt files to process. "-" is stdin.
	Inputs []string

	// MaxAgeDays is how far in the future Expires is set.
	MaxAgeDays int

	// KeyID selects the signing key: a fingerprint, a key ID suffix or a
	// user ID fragment. Empty means no key.
	KeyID string

	// KeyringPath is the OpenPGP keyring file holding the signing key.
	KeyringPath string

	// Timeout is the per-request timeout for URL checks.
	Timeout time.Duration

	// Concurrency is the number of parallel URL checks and file checks.
	Concurrency int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum key document size in bytes.
	// Set to 0 to use the default.
	MaxBodySize int64

	// Offline disables every network check. https fields are kept with a
	// "not checked" warning.
	Offline bool

	// TorProxyAddress is the SOCKS5 proxy used for .onion URLs.
	TorProxyAddress string

	// UseEmbeddedTor starts an embedded Tor daemon for .onion URLs instead of
	// using TorProxyAddress.
	//
	// Note: The embedded Tor daemon takes 1-3 minutes to bootstrap on first
	// start.
	UseEmbeddedTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon. Only used when UseEmbeddedTor is true.
	TorStartupTimeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport and MarkdownReport select the report format. Both false
	// means the human-readable text report. Mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// OutputFile is where "sign" writes the signed document. Empty means
	// the input file is replaced.
	OutputFile string

	// AssumeYes skips the confirmation prompt of "sign".
	AssumeYes bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// DBDir is the directory holding the run history database.
	// Defaults to XDG data directory (~/.local/share/sectxt on Linux).
	DBDir string

	// SaveToDB records every run in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (max age, timeout,
// concurrency). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxAgeDays:        DefaultMaxAgeDays,
		Timeout:           DefaultTimeout,
		Concurrency:       DefaultConcurrency,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		TorProxyAddress:   DefaultTorProxyAddress,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory for sectxt.
// On Linux: ~/.local/share/sectxt
// On macOS: ~/Library/Application Support/sectxt
// On Windows: %LOCALAPPDATA%\sectxt
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sectxt.
// On Linux: ~/.config/sectxt
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast, before any file is read or URL fetched.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	if c.MaxAgeDays < 1 {
		return ErrInvalidMaxAge
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.KeyID != "" && c.KeyringPath == "" {
		return ErrKeyringRequired
	}

	if c.UseEmbeddedTor && c.Offline {
		return ErrConflictingTorModes
	}

	return nil
}
