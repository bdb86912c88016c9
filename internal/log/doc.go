// Package log provides secure logging for sectxt, built on top of the
// standard slog package.
//
// Signing needs a passphrase and sometimes an armored private key passes
// through the same code paths as ordinary diagnostics. The SecureHandler
// masks such values before any handler formats them:
//   - passphrases and passwords, by attribute name
//   - HTTP credentials (Authorization, Cookie, bearer tokens)
//   - armored PGP private key blocks, by value
//
// Fingerprints, key IDs and OPENPGPKEY owner hashes are public and stay
// readable even though they look like long random strings.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("decrypting key", "fingerprint", fpr, "passphrase", pass) // passphrase masked
//	slog.SetDefault(logger)
package log
