package handlers

import (
	"encoding/json"
	"log/slog"

	"github.com/valyala/fasthttp"

	"guessingGame/repository"
)

type UserHandler struct {
	users  repository.UserRepositoryI
	logger *slog.Logger
}

func NewUserHandler(users repository.UserRepositoryI, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger.With("component", "UserHandler")}
}

type createUserRequest struct {
	Name *string `json:"name"`
}

// CreateUser handles POST /api/users.
func (h *UserHandler) CreateUser(ctx *fasthttp.RequestCtx) {
	var req createUserRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.logger.Warn("invalid JSON body", "error", err)
		writeError(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "name is required")
		return
	}

	user, created, err := h.users.Add(ctx, *req.Name)
	if err != nil {
		h.logger.Error("add user failed", "name", *req.Name, "error", err)
		writeError(ctx, fasthttp.StatusInternalServerError, "internal server error")
		return
	}
	if !created {
		h.logger.Info("user already exists", "name", *req.Name)
		writeError(ctx, fasthttp.StatusConflict, "user already exists")
		return
	}

	h.logger.Info("user created", "name", user.Name, "id", user.ID)
	writeJSON(ctx, fasthttp.StatusCreated, user)
}
