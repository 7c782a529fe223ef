package database

import (
	"strings"
	"testing"
)

// 埋め込みマイグレーションのup/downファイルが対になっていることを検証
func TestMigrations_UpDownPairs(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no migration files embedded")
	}

	ups := make(map[string]bool)
	downs := make(map[string]bool)
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
			t.Errorf("migration %s has no down file", base)
		}
	}
	for base := range downs {
		if !ups[base] {
			t.Errorf("migration %s has no up file", base)
		}
	}
}

// MigrationNamesが昇順で認証テーブル群→profilesの順に並ぶことを検証。
// profilesはprincipalsへのFKを持つため、この適用順序は入れ替えられない。
func TestMigrationNames_AuthTablesBeforeProfiles(t *testing.T) {
	names, err := MigrationNames()
	if err != nil {
		t.Fatalf("MigrationNames() error: %v", err)
	}

	authIdx, profileIdx := -1, -1
	for i, name := range names {
		if strings.Contains(name, "create_auth_tables.up") {
			authIdx = i
		}
		if strings.Contains(name, "create_profiles.up") {
			profileIdx = i
		}
	}

	if authIdx < 0 {
		t.Fatal("auth tables migration is missing from the embedded set")
	}
	if profileIdx < 0 {
		t.Fatal("profiles migration is missing from the embedded set")
	}
	if authIdx > profileIdx {
		t.Errorf("auth tables migration (%s) must sort before profiles (%s)", names[authIdx], names[profileIdx])
	}
}

// profilesテーブルのマイグレーションがCASCADE削除の外部キーを持つことを検証
func TestMigrations_ProfilesCascade(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/000002_create_profiles.up.sql")
	if err != nil {
		t.Fatalf("failed to read profiles migration: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "REFERENCES principals(id) ON DELETE CASCADE") {
		t.Error("profiles migration should reference principals with ON DELETE CASCADE")
	}
	if !strings.Contains(content, "UNIQUE") {
		t.Error("profiles migration should enforce UNIQUE principal_id")
	}
}
