package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	sub, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations: %v", err)
	}

	entries, err := fs.ReadDir(sub, ".")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no migrations embedded")
	}

	for i, e := range entries {
		wantPrefix := []string{"001_", "002_", "003_", "004_"}
		if i < len(wantPrefix) && !strings.HasPrefix(e.Name(), wantPrefix[i]) {
			t.Errorf("migration %d = %s, want prefix %s", i, e.Name(), wantPrefix[i])
		}

		body, err := fs.ReadFile(sub, e.Name())
		if err != nil {
			t.Fatalf("ReadFile %s: %v", e.Name(), err)
		}
		if !strings.Contains(string(body), "---- create above / drop below ----") {
			t.Errorf("%s has no down section", e.Name())
		}
	}
}

func TestTransactionReferencesRestrictDelete(t *testing.T) {
	sub, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations: %v", err)
	}
	body, err := fs.ReadFile(sub, "004_transaction_references.sql")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	up, _, _ := strings.Cut(string(body), "---- create above / drop below ----")
	for _, column := range []string{"user_id", "account_id", "budget_id", "category_id"} {
		want := "FOREIGN KEY (" + column + ")"
		idx := strings.Index(up, want)
		if idx < 0 {
			t.Errorf("%s is not redefined", column)
			continue
		}
		line, _, _ := strings.Cut(up[idx:], "\n")
		if !strings.HasSuffix(strings.TrimRight(line, ",;"), "ON DELETE RESTRICT") {
			t.Errorf("%s: %q, want ON DELETE RESTRICT", column, line)
		}
	}
}
