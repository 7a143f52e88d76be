package db

import (
	"context"
	"errors"

	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/domain/user"
)

type SeedStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// EnsureSeedUser creates the configured bootstrap user once. It reports whether a user was created.
func EnsureSeedUser(ctx context.Context, store SeedStore, hasher PasswordHasher, cfg config.Config) (bool, error) {
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		return false, nil
	}

	// check if the user exists

	_, err := store.GetByEmail(ctx, cfg.SeedEmail)

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := hasher.Hash(cfg.SeedPassword)

	if err != nil {
		return false, err
	}

	u := user.NewFromCreateRequest(user.CreateUserRequest{
		Email:     cfg.SeedEmail,
		FirstName: cfg.SeedFirstName,
		LastName:  cfg.SeedLastName,
	}, hash)

	_, err = store.Create(ctx, u)

	// another instance won the race
	if errors.Is(err, user.ErrEmailTaken) {
		return false, nil
	}

	return err == nil, err
}
