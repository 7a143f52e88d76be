package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/userhub/internal/apperr"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	Update(ctx context.Context, id string, p user.Patch) (user.User, error)
	Delete(ctx context.Context, id string) (user.User, error)
}

type UserStore interface {
	UserReader
	UserWriter
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
	NeedsRehash(hash string) bool
}

const defaultStoreTimeout = 3 * time.Second

type UsersHandler struct {
	store   UserStore
	hasher  PasswordHasher
	policy  apperr.StatusPolicy
	timeout time.Duration
}

func NewUsersHandler(store UserStore, hasher PasswordHasher, policy apperr.StatusPolicy, timeout time.Duration) *UsersHandler {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}

	return &UsersHandler{
		store:   store,
		hasher:  hasher,
		policy:  policy,
		timeout: timeout,
	}
}

// storeContext bounds a store call by the request's own lifetime and the handler timeout.
func storeContext(ctx *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), timeout)
}

// storeError maps store sentinels onto the error taxonomy.
func storeError(err error, action string) error {
	switch {
	case errors.Is(err, user.ErrNotFound):
		return apperr.NotFound("User Not Found")
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.Conflict("User already exists")
	default:
		return apperr.Store("Could not "+action, err)
	}
}

// fail hands err to the error translator.
func fail(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := storeContext(ctx, h.timeout)
	defer cancel()

	users, err := h.store.List(cctx)

	if err != nil {
		fail(ctx, storeError(err, "list users"))
		return
	}

	if users == nil {
		users = []user.User{}
	}

	ctx.JSON(http.StatusOK, users)
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	cctx, cancel := storeContext(ctx, h.timeout)
	defer cancel()

	u, err := h.store.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		fail(ctx, storeError(err, "fetch user"))
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if err := Bind(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}

	cctx, cancel := storeContext(ctx, h.timeout)
	defer cancel()

	_, err := h.store.GetByEmail(cctx, req.Email)

	if err == nil {
		fail(ctx, apperr.Conflict("User already exists"))
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		fail(ctx, storeError(err, "create user"))
		return
	}

	hash, err := h.hasher.Hash(req.Password)

	if err != nil {
		fail(ctx, &apperr.Error{Kind: apperr.KindInternal, Message: "Could not create user", Err: err})
		return
	}

	// the store's unique email constraint still catches a concurrent create
	created, err := h.store.Create(cctx, user.NewFromCreateRequest(req, hash))

	if err != nil {
		fail(ctx, storeError(err, "create user"))
		return
	}

	ctx.JSON(h.policy.CreatedStatus(), created)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	var req user.UpdateUserRequest

	if err := Bind(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}

	id := ctx.Param("id")

	cctx, cancel := storeContext(ctx, h.timeout)
	defer cancel()

	existing, err := h.store.GetByID(cctx, id)

	if err != nil {
		fail(ctx, storeError(err, "update user"))
		return
	}

	patch := user.Patch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if req.Email != nil && *req.Email != existing.Email {
		owner, err := h.store.GetByEmail(cctx, *req.Email)

		switch {
		case err == nil && owner.ID != id:
			fail(ctx, apperr.Conflict("User already exists"))
			return
		case err != nil && !errors.Is(err, user.ErrNotFound):
			fail(ctx, storeError(err, "update user"))
			return
		}
	}

	// the stored password is always a hash, never what the client sent
	if req.Password != nil {
		hash, err := h.hasher.Hash(*req.Password)

		if err != nil {
			fail(ctx, &apperr.Error{Kind: apperr.KindInternal, Message: "Could not update user", Err: err})
			return
		}

		patch.PasswordHash = &hash
	}

	if patch.Empty() {
		ctx.JSON(http.StatusOK, existing)
		return
	}

	updated, err := h.store.Update(cctx, id, patch)

	if err != nil {
		fail(ctx, storeError(err, "update user"))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	cctx, cancel := storeContext(ctx, h.timeout)
	defer cancel()

	deleted, err := h.store.Delete(cctx, ctx.Param("id"))

	if err != nil {
		fail(ctx, storeError(err, "delete user"))
		return
	}

	ctx.JSON(http.StatusOK, deleted)
}
