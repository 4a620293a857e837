package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMigrationNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_add_index.up.sql", "001_init.up.sql", "001_init.down.sql", "000_drop_all.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.up.sql"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := migrationNames(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"001_init", "002_add_index"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("migrationNames = %v, want %v", got, want)
	}

	if _, err := migrationNames(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestMigrationFilesShipped(t *testing.T) {
	names, err := migrationNames(filepath.Join("..", "..", "migrations"))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if _, err := os.Stat(filepath.Join("..", "..", "migrations", name+".down.sql")); err != nil {
			t.Errorf("%s has no down migration", name)
		}
	}
	for _, f := range []string{"000_drop_all.sql", "000_consolidated.sql"} {
		if _, err := os.Stat(filepath.Join("..", "..", "migrations", f)); err != nil {
			t.Errorf("missing %s", f)
		}
	}
}
