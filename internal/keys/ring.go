package keys

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/openpgp" //nolint:staticcheck // maintained fork not in the dependency set
	"golang.org/x/crypto/openpgp/armor"

	"github.com/nao1215/sectxt/internal/model"
)

// Ring is an in-memory OpenPGP keyring.
type Ring struct {
	entities openpgp.EntityList
}

// NewRing wraps already parsed entities.
func NewRing(entities openpgp.EntityList) *Ring {
	return &Ring{entities: entities}
}

// LoadRing reads a keyring file.
func LoadRing(path string) (*Ring, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}
	ring, err := ParseRing(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ring, nil
}

// ParseRing parses an armored or binary keyring.
func ParseRing(data []byte) (*Ring, error) {
	var (
		entities openpgp.EntityList
		err      error
	)
	if block, armorErr := armor.Decode(bytes.NewReader(data)); armorErr == nil {
		entities, err = openpgp.ReadKeyRing(block.Body)
	} else {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse keyring: %w", err)
	}
	if len(entities) == 0 {
		return nil, ErrEmptyRing
	}
	return NewRing(entities), nil
}

// Len returns the number of keys in the ring.
func (r *Ring) Len() int {
	return len(r.entities)
}

// Lookup finds the single entity matching keyID.
func (r *Ring) Lookup(keyID string) (*openpgp.Entity, error) {
	var matches []*openpgp.Entity
	for _, e := range r.entities {
		if matchesID(e, keyID) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, keyID)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousKey, keyID)
	}
}

// KeyInfo returns the fingerprint and expiration of the key matching keyID.
func (r *Ring) KeyInfo(keyID string) (model.SigningKey, error) {
	e, err := r.Lookup(keyID)
	if err != nil {
		return model.SigningKey{}, err
	}
	return model.SigningKey{
		Fingerprint: Fingerprint(e),
		ExpiresAt:   Expiration(e),
	}, nil
}

// Fingerprint returns the uppercase hex fingerprint of the primary key.
func Fingerprint(e *openpgp.Entity) string {
	return fmt.Sprintf("%X", e.PrimaryKey.Fingerprint[:])
}

// Expiration returns when the primary key expires according to its
// primary identity's self-signature, or nil when it never does.
func Expiration(e *openpgp.Entity) *time.Time {
	ident := primaryIdentity(e)
	if ident == nil || ident.SelfSignature == nil {
		return nil
	}
	lifetime := ident.SelfSignature.KeyLifetimeSecs
	if lifetime == nil || *lifetime == 0 {
		return nil
	}
	t := e.PrimaryKey.CreationTime.Add(time.Duration(*lifetime) * time.Second).UTC()
	return &t
}

// primaryIdentity returns the identity flagged primary, falling back to
// the first by name.
func primaryIdentity(e *openpgp.Entity) *openpgp.Identity {
	names := make([]string, 0, len(e.Identities))
	for name := range e.Identities {
		names = append(names, name)
	}
	sort.Strings(names)

	var first *openpgp.Identity
	for _, name := range names {
		ident := e.Identities[name]
		if first == nil {
			first = ident
		}
		if sig := ident.SelfSignature; sig != nil && sig.IsPrimaryId != nil && *sig.IsPrimaryId {
			return ident
		}
	}
	return first
}

// matchesID compares keyID with the fingerprint suffix or, for non-hex
// IDs, with the user IDs.
func matchesID(e *openpgp.Entity, keyID string) bool {
	id := model.CanonicalFingerprint(keyID)
	if id != "" && isHex(id) {
		return strings.HasSuffix(Fingerprint(e), id)
	}

	needle := strings.ToLower(strings.TrimSpace(keyID))
	if needle == "" {
		return false
	}
	for name := range e.Identities {
		if strings.Contains(strings.ToLower(name), needle) {
			return true
		}
	}
	return false
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}
