package db

import (
	"database/sql"
	"embed"
	"fmt"
	stdfs "io/fs"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

// Open opens (or creates) a local SQLite database file and ensures the schema exists.
// The schema lives in embedded .sql files under internal/db/schema and is made of
// CREATE ... IF NOT EXISTS statements, so opening the same file again is a no-op
// for existing tables and rows.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "database.db"
	}
	d, err := sql.Open(DriverName, withPragmas(path))
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// journal_mode may not be supported in some contexts (e.g., in-memory). Ignore errors.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	if err := applySchema(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// withPragmas appends the connection options every pooled connection needs.
// PRAGMAs run through Exec only reach one connection of the pool, so
// foreign_keys and busy_timeout go through the DSN instead.
func withPragmas(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

//go:embed schema/*.sql
var schemaFS embed.FS

// schemaFiles returns the embedded schema files in lexical order.
func schemaFiles() ([]string, error) {
	list, err := stdfs.ReadDir(schemaFS, "schema")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, de := range list {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".sql") {
			continue
		}
		names = append(names, "schema/"+de.Name())
	}
	sort.Strings(names)
	return names, nil
}

func applySchema(d *sql.DB) error {
	files, err := schemaFiles()
	if err != nil {
		return err
	}
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	for _, f := range files {
		text, err := schemaFS.ReadFile(f)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if strings.TrimSpace(string(text)) == "" {
			continue
		}
		if _, err := tx.Exec(string(text)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("schema %s failed: %w", f, err)
		}
	}
	return tx.Commit()
}
