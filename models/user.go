package models

// User represents a registered player.
// It maps to the `users` table in SQLite.
type User struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
