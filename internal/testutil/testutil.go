package testutil

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"guessingGame/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database with the schema applied.
// The database is named after the test so parallel tests never share state.
// It is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	// Shared cache keeps one logical DB across the pool's connections.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// OpenFileDB opens a database file inside t.TempDir and returns it with its path.
func OpenFileDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, path
}
