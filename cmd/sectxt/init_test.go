package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/sectxt/internal/config"
)

// TestInitCmd tests configuration file generation.
func TestInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a loadable configuration", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "config.yaml")
		stdout, _, err := executeCommand(t, "", "init", "-o", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Created configuration file") {
			t.Errorf("unexpected output: %s", stdout)
		}

		file, err := config.LoadConfigFile(path)
		if err != nil {
			t.Fatalf("generated file does not load: %v", err)
		}
		cfg := config.NewConfig()
		file.Apply(cfg)
		if cfg.MaxAgeDays != config.DefaultMaxAgeDays {
			t.Errorf("MaxAgeDays = %d, want %d", cfg.MaxAgeDays, config.DefaultMaxAgeDays)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("Timeout = %v, want %v", cfg.Timeout, config.DefaultTimeout)
		}
		if !cfg.SaveToDB {
			t.Error("history should stay enabled")
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".sectxt")
		if err := os.WriteFile(path, []byte("max_age_days: 30\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		_, _, err := executeCommand(t, "", "init", "-o", path)
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Fatalf("expected already exists error, got %v", err)
		}

		if _, _, err := executeCommand(t, "", "init", "-o", path, "-f"); err != nil {
			t.Fatalf("unexpected error with -f: %v", err)
		}
		data, err := os.ReadFile(path) //nolint:gosec // test file
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(data), "max_age_days: 30") {
			t.Error("file was not overwritten")
		}
	})
}
