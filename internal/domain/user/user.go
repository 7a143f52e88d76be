package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// User is the stored record. Password always holds a bcrypt hash.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateUserRequest struct {
	Email     string `json:"email" form:"email" binding:"required,email"`
	Password  string `json:"password" form:"password" binding:"required"`
	FirstName string `json:"firstName" form:"firstName" binding:"required"`
	LastName  string `json:"lastName" form:"lastName" binding:"required"`
}

// UpdateUserRequest carries only the keys a caller supplied; nil means untouched.
type UpdateUserRequest struct {
	Email     *string `json:"email" form:"email" binding:"omitempty,email"`
	Password  *string `json:"password" form:"password" binding:"omitempty,min=1"`
	FirstName *string `json:"firstName" form:"firstName" binding:"omitempty,min=1"`
	LastName  *string `json:"lastName" form:"lastName" binding:"omitempty,min=1"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Patch is the store-level partial update. Password, when set, is already hashed.
type Patch struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
}

func (p Patch) Empty() bool {
	return p.Email == nil && p.PasswordHash == nil && p.FirstName == nil && p.LastName == nil
}

// Apply replaces the supplied fields on u and bumps UpdatedAt. ID is never touched.
func (p Patch) Apply(u *User, now time.Time) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.Password = *p.PasswordHash
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	u.UpdatedAt = now
}
