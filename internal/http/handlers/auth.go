package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/userhub/internal/apperr"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type TokenIssuer interface {
	Issue(u user.User) (string, error)
}

// LoginStore reads users and updates a stored hash after a cost upgrade.
type LoginStore interface {
	UserReader
	Update(ctx context.Context, id string, p user.Patch) (user.User, error)
}

type AuthHandler struct {
	users   LoginStore
	hasher  PasswordHasher
	tokens  TokenIssuer
	timeout time.Duration
}

func NewAuthHandler(users LoginStore, hasher PasswordHasher, tokens TokenIssuer, timeout time.Duration) *AuthHandler {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}

	return &AuthHandler{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		timeout: timeout,
	}
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if err := Bind(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}

	cctx, cancel := storeContext(ctx, h.timeout)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			fail(ctx, apperr.Unauthorized("wrong email"))
			return
		}
		fail(ctx, storeError(err, "log in"))
		return
	}

	if !h.hasher.Verify(req.Password, foundUser.Password) {
		fail(ctx, apperr.Unauthorized("wrong password"))
		return
	}

	foundUser = h.upgradeHash(cctx, foundUser, req.Password)

	token, err := h.tokens.Issue(foundUser)

	if err != nil {
		fail(ctx, &apperr.Error{Kind: apperr.KindInternal, Message: "Could not generate token", Err: err})
		return
	}

	ctx.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  foundUser,
	})
}

// upgradeHash re-hashes plain at the current cost when the stored hash is weaker.
// Failures keep the old hash; the login itself already succeeded.
func (h *AuthHandler) upgradeHash(ctx context.Context, u user.User, plain string) user.User {
	if !h.hasher.NeedsRehash(u.Password) {
		return u
	}

	hash, err := h.hasher.Hash(plain)
	if err != nil {
		slog.WarnContext(ctx, "password rehash failed", "user_id", u.ID, "err", err)
		return u
	}

	updated, err := h.users.Update(ctx, u.ID, user.Patch{PasswordHash: &hash})
	if err != nil {
		slog.WarnContext(ctx, "password rehash not stored", "user_id", u.ID, "err", err)
		return u
	}

	return updated
}

// Me returns the user behind the request's token. Mount behind AuthMiddleware.RequireAuth.
func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		fail(ctx, apperr.Forbidden("wrong token"))
		return
	}

	cctx, cancel := storeContext(ctx, h.timeout)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		fail(ctx, storeError(err, "fetch current user"))
		return
	}

	ctx.JSON(http.StatusOK, u)
}
