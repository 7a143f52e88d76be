// Package storetest holds the behaviour every user store must share.
// Each store package runs it against its own backend.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Store interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	Update(ctx context.Context, id string, p user.Patch) (user.User, error)
	Delete(ctx context.Context, id string) (user.User, error)
}

// Run executes the suite. newStore must return an empty store.
// missingID must be a well-formed id that the backend will never assign.
func Run(t *testing.T, newStore func(t *testing.T) Store, missingID string) {
	t.Helper()

	t.Run("create_assigns_id", func(t *testing.T) {
		s := newStore(t)
		u := create(t, s, "a@x.com")

		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "a@x.com", u.Email)
		assert.Equal(t, "hash-a@x.com", u.Password)
	})

	t.Run("get_by_id_and_email", func(t *testing.T) {
		s := newStore(t)
		u := create(t, s, "a@x.com")

		byID, err := s.GetByID(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
		assert.Equal(t, u.FirstName, byID.FirstName)

		byEmail, err := s.GetByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
	})

	t.Run("missing_is_not_found", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetByID(context.Background(), missingID)
		assert.ErrorIs(t, err, user.ErrNotFound)

		_, err = s.GetByID(context.Background(), "definitely not an id")
		assert.ErrorIs(t, err, user.ErrNotFound)

		_, err = s.GetByEmail(context.Background(), "nobody@x.com")
		assert.ErrorIs(t, err, user.ErrNotFound)

		_, err = s.Update(context.Background(), missingID, user.Patch{})
		assert.ErrorIs(t, err, user.ErrNotFound)

		_, err = s.Delete(context.Background(), missingID)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("duplicate_email_rejected", func(t *testing.T) {
		s := newStore(t)
		create(t, s, "dup@x.com")

		_, err := s.Create(context.Background(), newUser("dup@x.com"))
		assert.ErrorIs(t, err, user.ErrEmailTaken)

		all, err := s.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("concurrent_duplicate_creates_leave_one", func(t *testing.T) {
		s := newStore(t)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = s.Create(context.Background(), newUser("race@x.com"))
			}()
		}
		wg.Wait()

		all, err := s.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("list_returns_all", func(t *testing.T) {
		s := newStore(t)
		create(t, s, "a@x.com")
		create(t, s, "b@x.com")

		all, err := s.List(context.Background())
		require.NoError(t, err)
		require.Len(t, all, 2)

		emails := []string{all[0].Email, all[1].Email}
		assert.ElementsMatch(t, []string{"a@x.com", "b@x.com"}, emails)
	})

	t.Run("update_replaces_supplied_fields_only", func(t *testing.T) {
		s := newStore(t)
		u := create(t, s, "a@x.com")

		first := "Z"
		got, err := s.Update(context.Background(), u.ID, user.Patch{FirstName: &first})
		require.NoError(t, err)

		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "Z", got.FirstName)
		assert.Equal(t, u.LastName, got.LastName)
		assert.Equal(t, u.Email, got.Email)
		assert.Equal(t, u.Password, got.Password)
		assert.False(t, got.UpdatedAt.Before(u.UpdatedAt))

		again, err := s.GetByID(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Z", again.FirstName)
	})

	t.Run("update_email_moves_lookup", func(t *testing.T) {
		s := newStore(t)
		u := create(t, s, "old@x.com")

		email := "new@x.com"
		_, err := s.Update(context.Background(), u.ID, user.Patch{Email: &email})
		require.NoError(t, err)

		_, err = s.GetByEmail(context.Background(), "old@x.com")
		assert.ErrorIs(t, err, user.ErrNotFound)

		got, err := s.GetByEmail(context.Background(), "new@x.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("update_email_conflict", func(t *testing.T) {
		s := newStore(t)
		create(t, s, "a@x.com")
		b := create(t, s, "b@x.com")

		email := "a@x.com"
		_, err := s.Update(context.Background(), b.ID, user.Patch{Email: &email})
		assert.ErrorIs(t, err, user.ErrEmailTaken)

		got, err := s.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, "b@x.com", got.Email)
	})

	t.Run("delete_returns_prior_record", func(t *testing.T) {
		s := newStore(t)
		u := create(t, s, "a@x.com")

		gone, err := s.Delete(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, gone.ID)
		assert.Equal(t, u.Email, gone.Email)

		_, err = s.GetByID(context.Background(), u.ID)
		assert.ErrorIs(t, err, user.ErrNotFound)

		// the email is free again
		create(t, s, "a@x.com")
	})
}

func newUser(email string) user.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return user.User{
		Email:     email,
		Password:  "hash-" + email,
		FirstName: "First",
		LastName:  "Last",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func create(t *testing.T, s Store, email string) user.User {
	t.Helper()

	u, err := s.Create(context.Background(), newUser(email))
	require.NoError(t, err)
	return u
}
