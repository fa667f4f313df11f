package repository

import (
	"context"

	"guessingGame/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Exists(ctx context.Context, name string) (bool, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	GetIDByName(ctx context.Context, name string) (int64, error)
	Add(ctx context.Context, name string) (*models.User, bool, error)
}

// GuessRepositoryI defines operations on Guess entities.
type GuessRepositoryI interface {
	Add(ctx context.Context, userID int64, numGuesses int, finished bool) (*models.Guess, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Guess, error)
}

var (
	_ UserRepositoryI  = (*UserRepository)(nil)
	_ GuessRepositoryI = (*GuessRepository)(nil)
)
