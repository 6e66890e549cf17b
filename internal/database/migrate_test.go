package database

import (
	"io/fs"
	"strings"
	"testing"
)

// 埋め込みマイグレーションにup/downのペアが揃っていることを検証
func TestMigrationsFS_UpDownPairs(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no migration files embedded")
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected migration file name: %s", name)
		}
	}

	for base := range ups {
		if !downs[base] {
			t.Errorf("missing down migration for %s", base)
		}
	}
	for base := range downs {
		if !ups[base] {
			t.Errorf("missing up migration for %s", base)
		}
	}
}

// statusesテーブルの複合主キーがマイグレーションに含まれることを検証
func TestMigrationsFS_StatusesUniquePair(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("failed to read init migration: %v", err)
	}
	if !strings.Contains(string(data), "PRIMARY KEY (employee_id, day)") {
		t.Error("statuses table must enforce one row per (employee_id, day)")
	}
}
