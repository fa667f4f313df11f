package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"guessingGame/internal/db"
	"guessingGame/models"
)

// GuessRepository stores the outcome of played rounds.
type GuessRepository struct {
	db  *sqlx.DB
	obs *instrumentation
}

// NewGuessRepository creates a new GuessRepository.
func NewGuessRepository(d *sql.DB, opts ...Option) *GuessRepository {
	return &GuessRepository{db: sqlx.NewDb(d, db.DriverName), obs: newInstrumentation(opts...)}
}

// Add inserts a guess for userID. The foreign key on guesses.guesser is
// enforced, so an unknown userID yields ErrUserNotFound and no row.
func (r *GuessRepository) Add(ctx context.Context, userID int64, numGuesses int, finished bool) (*models.Guess, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query, args, err := sq.Insert("guesses").
		Columns("guesser", "num_guesses", "finished").
		Values(userID, numGuesses, finished).
		ToSql()
	if err != nil {
		return nil, err
	}
	var res sql.Result
	err = r.obs.observe(ctx, "guess.add", query, func(ctx context.Context) error {
		var err error
		res, err = r.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintForeignKey) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("insert guess: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Guess{ID: id, Guesser: userID, NumGuesses: numGuesses, Finished: finished}, nil
}

// ListByUser returns every guess recorded for userID, oldest first.
func (r *GuessRepository) ListByUser(ctx context.Context, userID int64) ([]models.Guess, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query, args, err := sq.Select("id", "guesser", "num_guesses", "finished").
		From("guesses").
		Where(sq.Eq{"guesser": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var out []models.Guess
	err = r.obs.observe(ctx, "guess.list_by_user", query, func(ctx context.Context) error {
		return r.db.SelectContext(ctx, &out, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
