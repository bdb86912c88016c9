package keys

import (
	"bytes"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/openpgp/clearsign" //nolint:staticcheck // maintained fork not in the dependency set
	"golang.org/x/crypto/openpgp/packet"
)

// PassphraseFunc supplies the passphrase for an encrypted private key.
type PassphraseFunc func(fingerprint string) ([]byte, error)

// Signer clear-signs documents with keys from a Ring.
type Signer struct {
	ring       *Ring
	passphrase PassphraseFunc
	config     *packet.Config
	logger     *slog.Logger
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithPassphrase sets how passphrases are obtained.
func WithPassphrase(fn PassphraseFunc) SignerOption {
	return func(s *Signer) {
		s.passphrase = fn
	}
}

// WithPacketConfig overrides the OpenPGP packet configuration (hash,
// clock).
func WithPacketConfig(cfg *packet.Config) SignerOption {
	return func(s *Signer) {
		s.config = cfg
	}
}

// WithSignerLogger sets the logger.
func WithSignerLogger(logger *slog.Logger) SignerOption {
	return func(s *Signer) {
		s.logger = logger
	}
}

// NewSigner creates a Signer over ring.
func NewSigner(ring *Ring, opts ...SignerOption) *Signer {
	s := &Signer{
		ring:   ring,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClearSign wraps document in an OpenPGP cleartext signature made with
// the key whose fingerprint is given. Nothing is returned on failure, so
// callers can write the output only after success.
func (s *Signer) ClearSign(document []byte, fingerprint string) ([]byte, error) {
	e, err := s.ring.Lookup(fingerprint)
	if err != nil {
		return nil, err
	}
	if e.PrivateKey == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPrivateKey, Fingerprint(e))
	}

	if e.PrivateKey.Encrypted {
		if s.passphrase == nil {
			return nil, fmt.Errorf("%w: key is encrypted and no passphrase source is set", ErrWrongPassphrase)
		}
		pass, err := s.passphrase(Fingerprint(e))
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		if err := e.PrivateKey.Decrypt(pass); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWrongPassphrase, err)
		}
	}

	var buf bytes.Buffer
	w, err := clearsign.Encode(&buf, e.PrivateKey, s.config)
	if err != nil {
		return nil, fmt.Errorf("failed to start signature: %w", err)
	}
	if _, err := w.Write(document); err != nil {
		return nil, fmt.Errorf("failed to sign document: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish signature: %w", err)
	}

	s.logger.Debug("document signed", "fingerprint", Fingerprint(e), "bytes", buf.Len())
	return buf.Bytes(), nil
}
