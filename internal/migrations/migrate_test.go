package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLatestVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000007_runs_index.up.sql",
		"000012_notes.down.sql", // no matching up file
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	os.Mkdir(filepath.Join(dir, "000099_dir.up.sql"), 0o755)

	if got := LatestVersion(dir); got != 7 {
		t.Errorf("expected version 7, got %d", got)
	}
}

func TestLatestVersionMissingDir(t *testing.T) {
	if got := LatestVersion(filepath.Join(t.TempDir(), "nope")); got != 0 {
		t.Errorf("expected 0 for a missing dir, got %d", got)
	}
}

func TestRunMigrationsNeedsURL(t *testing.T) {
	if err := RunMigrations("", "migrations"); err == nil {
		t.Error("expected an error for an empty database URL")
	}
}
