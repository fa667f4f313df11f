package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"guessingGame/internal/db"
	"guessingGame/models"
)

type UserRepository struct {
	db  *sqlx.DB
	obs *instrumentation
}

func NewUserRepository(d *sql.DB, opts ...Option) *UserRepository {
	return &UserRepository{db: sqlx.NewDb(d, db.DriverName), obs: newInstrumentation(opts...)}
}

// Exists reports whether a user with the given name is registered.
func (r *UserRepository) Exists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := sq.Select("1").From("users").Where(sq.Eq{"name": name}).Limit(1).ToSql()
	if err != nil {
		return false, err
	}
	var one int
	err = r.obs.observe(ctx, "user.exists", query, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &one, query, args...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByName returns the named user, or nil when there is none.
func (r *UserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := sq.Select("id", "name").From("users").Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return nil, err
	}
	var u models.User
	err = r.obs.observe(ctx, "user.get_by_name", query, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &u, query, args...)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetIDByName resolves a user name to its id. It returns ErrUserNotFound
// when no user has that name.
func (r *UserRepository) GetIDByName(ctx context.Context, name string) (int64, error) {
	u, err := r.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, ErrUserNotFound
	}
	return u.ID, nil
}

// Add registers a new user. It reports false, without writing, when the name is taken.
func (r *UserRepository) Add(ctx context.Context, name string) (*models.User, bool, error) {
	exists, err := r.Exists(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if exists {
		return nil, false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := sq.Insert("users").Columns("name").Values(name).ToSql()
	if err != nil {
		return nil, false, err
	}
	var res sql.Result
	err = r.obs.observe(ctx, "user.add", query, func(ctx context.Context) error {
		var err error
		res, err = r.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		// Lost a race with a concurrent insert of the same name.
		if isConstraint(err, sqlite3.ErrConstraintUnique) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}
	return &models.User{ID: id, Name: name}, true, nil
}
