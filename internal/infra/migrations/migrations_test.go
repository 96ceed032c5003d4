package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	data, err := fs.ReadFile(Migrations, "00001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, want := range []string{"-- +goose Up", "credentials", "session_records", "-- +goose Down"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("migration missing %q", want)
		}
	}
}
