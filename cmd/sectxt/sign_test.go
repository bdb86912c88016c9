package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/sectxt/internal/keys"
	"github.com/nao1215/sectxt/internal/pipeline"
	"golang.org/x/crypto/openpgp" //nolint:staticcheck // test key generation
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/clearsign"
	"golang.org/x/crypto/openpgp/packet"
)

// writeKeyring generates a key and stores it as an armored secret keyring.
// It returns the keyring path and the key fingerprint.
func writeKeyring(t *testing.T) (string, string) {
	t.Helper()

	e, err := openpgp.NewEntity("Security Team", "", "security@example.com", &packet.Config{RSABits: 1024})
	if err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	if err != nil {
		t.Fatalf("armor.Encode: %v", err)
	}
	if err := e.SerializePrivate(w, nil); err != nil {
		t.Fatalf("SerializePrivate: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close armor: %v", err)
	}

	path := filepath.Join(t.TempDir(), "team.asc")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("failed to write keyring: %v", err)
	}
	return path, keys.Fingerprint(e)
}

// TestSignCmd tests the sign command end to end, offline.
func TestSignCmd(t *testing.T) {
	t.Parallel()

	keyring, fingerprint := writeKeyring(t)

	t.Run("signs into the output file", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", validDocument)
		output := filepath.Join(t.TempDir(), "signed.txt")
		stdout, _, err := executeCommand(t, "", "sign", "--offline", "--no-history", "--yes",
			"-k", fingerprint, "-K", keyring, "-o", output, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Signed with key "+fingerprint) {
			t.Errorf("unexpected output:\n%s", stdout)
		}

		data, err := os.ReadFile(output) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("output not written: %v", err)
		}
		block, _ := clearsign.Decode(data)
		if block == nil {
			t.Fatalf("output is not clearsigned:\n%s", data)
		}
		if !strings.Contains(string(block.Plaintext), "Contact: mailto:security@example.com") {
			t.Errorf("signed plaintext lost Contact:\n%s", block.Plaintext)
		}

		original, err := os.ReadFile(input) //nolint:gosec // test file
		if err != nil {
			t.Fatal(err)
		}
		if string(original) != validDocument {
			t.Error("input must stay untouched when -o is given")
		}
	})

	t.Run("signs in place after confirmation", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", validDocument)
		_, stderr, err := executeCommand(t, "y\n", "sign", "--offline", "--no-history",
			"-k", fingerprint, "-K", keyring, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stderr, "Sign this document?") {
			t.Errorf("confirmation not asked:\n%s", stderr)
		}
		data, err := os.ReadFile(input) //nolint:gosec // test file
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, []byte("-----BEGIN PGP SIGNED MESSAGE-----")) {
			t.Errorf("input not replaced with signed output:\n%s", data)
		}
	})

	t.Run("declined confirmation writes nothing", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", validDocument)
		output := filepath.Join(t.TempDir(), "signed.txt")
		_, _, err := executeCommand(t, "n\n", "sign", "--offline", "--no-history",
			"-k", fingerprint, "-K", keyring, "-o", output, input)
		if !errors.Is(err, pipeline.ErrDeclined) {
			t.Fatalf("expected ErrDeclined, got %v", err)
		}
		if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
			t.Error("output written after declining")
		}
	})

	t.Run("rejected document is not signed", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", "Hiring: https://example.com/jobs\n")
		output := filepath.Join(t.TempDir(), "signed.txt")
		_, _, err := executeCommand(t, "", "sign", "--offline", "--no-history", "--yes",
			"-k", fingerprint, "-K", keyring, "-o", output, input)
		if !errors.Is(err, errChecksFailed) {
			t.Fatalf("expected errChecksFailed, got %v", err)
		}
		if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
			t.Error("output written for a rejected document")
		}
	})

	t.Run("key is required", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", validDocument)
		_, _, err := executeCommand(t, "", "sign", "--offline", "--no-history", "--yes", input)
		if !errors.Is(err, errKeyRequired) {
			t.Errorf("expected errKeyRequired, got %v", err)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()

		input := writeFile(t, "security.txt", validDocument)
		_, _, err := executeCommand(t, "", "sign", "--offline", "--no-history", "--yes",
			"-k", "nobody@example.net", "-K", keyring, input)
		if !errors.Is(err, keys.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("stdin needs --yes", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCommand(t, validDocument, "sign", "--offline", "--no-history",
			"-k", fingerprint, "-K", keyring, "-")
		if !errors.Is(err, errNotInteractive) {
			t.Errorf("expected errNotInteractive, got %v", err)
		}
	})
}
