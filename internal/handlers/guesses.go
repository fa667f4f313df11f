package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/valyala/fasthttp"

	"guessingGame/repository"
)

// GuessHandler records finished rounds.
type GuessHandler struct {
	users   repository.UserRepositoryI
	guesses repository.GuessRepositoryI
	logger  *slog.Logger
}

func NewGuessHandler(users repository.UserRepositoryI, guesses repository.GuessRepositoryI, logger *slog.Logger) *GuessHandler {
	return &GuessHandler{users: users, guesses: guesses, logger: logger.With("component", "GuessHandler")}
}

// recordGuessRequest identifies the player by name or by userid; name wins
// when both are sent.
type recordGuessRequest struct {
	Name    *string `json:"name"`
	UserID  *int64  `json:"userid"`
	Guess   *int    `json:"guess"`
	Correct *bool   `json:"correct"`
}

// RecordGuess handles POST /api/guesses.
func (h *GuessHandler) RecordGuess(ctx *fasthttp.RequestCtx) {
	var req recordGuessRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.logger.Warn("invalid JSON body", "error", err)
		writeError(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == nil && req.UserID == nil {
		writeError(ctx, fasthttp.StatusBadRequest, "name or userid is required")
		return
	}
	if req.Guess == nil || req.Correct == nil {
		writeError(ctx, fasthttp.StatusBadRequest, "guess and correct are required")
		return
	}

	var userID int64
	if req.Name != nil {
		id, err := h.users.GetIDByName(ctx, *req.Name)
		if err != nil {
			h.respondStorageError(ctx, "resolve user", err)
			return
		}
		userID = id
	} else {
		userID = *req.UserID
	}

	guess, err := h.guesses.Add(ctx, userID, *req.Guess, *req.Correct)
	if err != nil {
		h.respondStorageError(ctx, "add guess", err)
		return
	}

	h.logger.Info("guess recorded", "user_id", userID, "num_guesses", guess.NumGuesses, "finished", guess.Finished)
	writeJSON(ctx, fasthttp.StatusCreated, guess)
}

func (h *GuessHandler) respondStorageError(ctx *fasthttp.RequestCtx, op string, err error) {
	if errors.Is(err, repository.ErrUserNotFound) {
		h.logger.Info(op+": user not found")
		writeError(ctx, fasthttp.StatusNotFound, "user not found")
		return
	}
	h.logger.Error(op+" failed", "error", err)
	writeError(ctx, fasthttp.StatusInternalServerError, "internal server error")
}
