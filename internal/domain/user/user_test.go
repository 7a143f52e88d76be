package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestPatchApply_ReplacesOnlySuppliedFields(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	u := User{
		ID:        "u-1",
		Email:     "a@x.com",
		Password:  "$2a$10$hash",
		FirstName: "A",
		LastName:  "B",
		CreatedAt: created,
		UpdatedAt: created,
	}

	now := created.Add(time.Hour)
	Patch{FirstName: strPtr("Z")}.Apply(&u, now)

	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "Z", u.FirstName)
	assert.Equal(t, "B", u.LastName)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "$2a$10$hash", u.Password)
	assert.Equal(t, created, u.CreatedAt)
	assert.Equal(t, now, u.UpdatedAt)
}

func TestPatchEmpty(t *testing.T) {
	assert.True(t, Patch{}.Empty())
	assert.False(t, Patch{LastName: strPtr("B")}.Empty())
}

func TestNewFromCreateRequest(t *testing.T) {
	u := NewFromCreateRequest(CreateUserRequest{
		Email:     "a@x.com",
		Password:  "p",
		FirstName: "A",
		LastName:  "B",
	}, "hashed")

	assert.Empty(t, u.ID)
	assert.Equal(t, "hashed", u.Password)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
}
