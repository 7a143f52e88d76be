// Package metered wraps a user store so every call lands in the store metrics.
package metered

import (
	"context"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/observability"
)

type Store interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	Update(ctx context.Context, id string, p user.Patch) (user.User, error)
	Delete(ctx context.Context, id string) (user.User, error)
}

type UsersRepo struct {
	next Store
	prom *observability.Prom
}

func NewUsersRepo(next Store, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{next: next, prom: prom}
}

func (r *UsersRepo) List(ctx context.Context) (out []user.User, err error) {
	err = r.prom.ObserveDB("users.list", func() error {
		out, err = r.next.List(ctx)
		return err
	})
	return out, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (u user.User, err error) {
	err = r.prom.ObserveDB("users.get_by_id", func() error {
		u, err = r.next.GetByID(ctx, id)
		return err
	})
	return u, err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = r.prom.ObserveDB("users.get_by_email", func() error {
		u, err = r.next.GetByEmail(ctx, email)
		return err
	})
	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, in user.User) (u user.User, err error) {
	err = r.prom.ObserveDB("users.create", func() error {
		u, err = r.next.Create(ctx, in)
		return err
	})
	return u, err
}

func (r *UsersRepo) Update(ctx context.Context, id string, p user.Patch) (u user.User, err error) {
	err = r.prom.ObserveDB("users.update", func() error {
		u, err = r.next.Update(ctx, id, p)
		return err
	})
	return u, err
}

func (r *UsersRepo) Delete(ctx context.Context, id string) (u user.User, err error) {
	err = r.prom.ObserveDB("users.delete", func() error {
		u, err = r.next.Delete(ctx, id)
		return err
	})
	return u, err
}
