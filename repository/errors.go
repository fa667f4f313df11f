package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrUserNotFound is returned when a name or id does not match any user.
var ErrUserNotFound = errors.New("user not found")

// isConstraint reports whether err is a SQLite constraint violation of the given kind.
func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == code
}
