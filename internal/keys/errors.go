package keys

import "errors"

var (
	// ErrKeyNotFound is returned when no key in the ring matches the ID.
	ErrKeyNotFound = errors.New("signing key not found")

	// ErrAmbiguousKey is returned when several keys match the ID.
	ErrAmbiguousKey = errors.New("key ID matches more than one key")

	// ErrNoPrivateKey is returned when the matched key has no secret part.
	ErrNoPrivateKey = errors.New("key has no private part")

	// ErrEmptyRing is returned when a keyring file contains no keys.
	ErrEmptyRing = errors.New("keyring contains no keys")

	// ErrWrongPassphrase is returned when the private key cannot be decrypted.
	ErrWrongPassphrase = errors.New("cannot decrypt private key")
)
