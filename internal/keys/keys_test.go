package keys

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/openpgp" //nolint:staticcheck // test helpers
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/clearsign"
	"golang.org/x/crypto/openpgp/packet"
)

func newTestEntity(t *testing.T, name, email string, lifetime time.Duration) *openpgp.Entity {
	t.Helper()

	e, err := openpgp.NewEntity(name, "", email, &packet.Config{RSABits: 1024})
	if err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}
	if lifetime > 0 {
		secs := uint32(lifetime / time.Second)
		for _, ident := range e.Identities {
			ident.SelfSignature.KeyLifetimeSecs = &secs
		}
	}
	return e
}

// armoredSecretRing serializes entities (re-signing identities) into an
// armored private keyring.
func armoredSecretRing(t *testing.T, entities ...*openpgp.Entity) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	if err != nil {
		t.Fatalf("armor.Encode: %v", err)
	}
	for _, e := range entities {
		if err := e.SerializePrivate(w, nil); err != nil {
			t.Fatalf("SerializePrivate: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close armor: %v", err)
	}
	return buf.Bytes()
}

// TestParseRing tests keyring parsing.
func TestParseRing(t *testing.T) {
	t.Parallel()

	e := newTestEntity(t, "Security Team", "security@example.com", 0)

	t.Run("armored", func(t *testing.T) {
		t.Parallel()

		ring, err := ParseRing(armoredSecretRing(t, e))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ring.Len() != 1 {
			t.Errorf("Len() = %d, want 1", ring.Len())
		}
	})

	t.Run("binary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := e.Serialize(&buf); err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		ring, err := ParseRing(buf.Bytes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ring.Len() != 1 {
			t.Errorf("Len() = %d, want 1", ring.Len())
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseRing(nil); !errors.Is(err, ErrEmptyRing) {
			t.Errorf("expected ErrEmptyRing, got %v", err)
		}
	})

	t.Run("load from file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "secring.asc")
		if err := os.WriteFile(path, armoredSecretRing(t, e), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadRing(path); err != nil {
			t.Errorf("LoadRing() error = %v", err)
		}
		if _, err := LoadRing(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

// TestKeyInfo tests key lookup and expiration extraction.
func TestKeyInfo(t *testing.T) {
	t.Parallel()

	forever := newTestEntity(t, "Forever", "forever@example.com", 0)
	expiring := newTestEntity(t, "Expiring", "expiring@example.com", 30*24*time.Hour)
	ring := NewRing(openpgp.EntityList{forever, expiring})

	fpr := Fingerprint(expiring)

	t.Run("full fingerprint", func(t *testing.T) {
		t.Parallel()

		info, err := ring.KeyInfo(fpr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Fingerprint != fpr {
			t.Errorf("Fingerprint = %s, want %s", info.Fingerprint, fpr)
		}
		if info.ExpiresAt == nil {
			t.Fatal("ExpiresAt is nil")
		}
		want := expiring.PrimaryKey.CreationTime.Add(30 * 24 * time.Hour).UTC()
		if !info.ExpiresAt.Equal(want) {
			t.Errorf("ExpiresAt = %v, want %v", info.ExpiresAt, want)
		}
	})

	t.Run("long key id in lower case with prefix", func(t *testing.T) {
		t.Parallel()

		info, err := ring.KeyInfo("0x" + strings.ToLower(fpr[24:]))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Fingerprint != fpr {
			t.Errorf("Fingerprint = %s, want %s", info.Fingerprint, fpr)
		}
	})

	t.Run("email", func(t *testing.T) {
		t.Parallel()

		info, err := ring.KeyInfo("forever@example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.ExpiresAt != nil {
			t.Errorf("ExpiresAt = %v, want nil", info.ExpiresAt)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		if _, err := ring.KeyInfo("DEADBEEFDEADBEEF"); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("ambiguous", func(t *testing.T) {
		t.Parallel()

		if _, err := ring.KeyInfo("example.com"); !errors.Is(err, ErrAmbiguousKey) {
			t.Errorf("expected ErrAmbiguousKey, got %v", err)
		}
	})
}

// TestClearSign tests clear-signing with an unencrypted key.
func TestClearSign(t *testing.T) {
	t.Parallel()

	e := newTestEntity(t, "Security Team", "security@example.com", 0)
	ring := NewRing(openpgp.EntityList{e})
	document := []byte("Contact: mailto:security@example.com\nExpires: 2024-12-30T00:00:00Z\n")

	called := false
	signer := NewSigner(ring, WithPassphrase(func(string) ([]byte, error) {
		called = true
		return nil, nil
	}))

	out, err := signer.ClearSign(document, Fingerprint(e))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("passphrase requested for an unencrypted key")
	}

	block, _ := clearsign.Decode(out)
	if block == nil {
		t.Fatalf("output is not a clearsigned message:\n%s", out)
	}
	if !bytes.Equal(bytes.TrimRight(block.Plaintext, "\n"), bytes.TrimRight(document, "\n")) {
		t.Errorf("plaintext = %q", block.Plaintext)
	}
	signer2, err := openpgp.CheckDetachedSignature(openpgp.EntityList{e}, bytes.NewReader(block.Bytes), block.ArmoredSignature.Body)
	if err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
	if Fingerprint(signer2) != Fingerprint(e) {
		t.Errorf("signed by %s", Fingerprint(signer2))
	}
}

// TestClearSignErrors tests signing failures.
func TestClearSignErrors(t *testing.T) {
	t.Parallel()

	e := newTestEntity(t, "Security Team", "security@example.com", 0)

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()

		signer := NewSigner(NewRing(openpgp.EntityList{e}))
		if _, err := signer.ClearSign([]byte("x\n"), "FFFFFFFF"); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("public key only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := e.Serialize(&buf); err != nil {
			t.Fatal(err)
		}
		public, err := openpgp.ReadKeyRing(&buf)
		if err != nil {
			t.Fatal(err)
		}
		signer := NewSigner(NewRing(public))
		if _, err := signer.ClearSign([]byte("x\n"), Fingerprint(e)); !errors.Is(err, ErrNoPrivateKey) {
			t.Errorf("expected ErrNoPrivateKey, got %v", err)
		}
	})
}
