package user

import "time"

// NewFromCreateRequest builds an unsaved record; the store assigns the ID.
func NewFromCreateRequest(req CreateUserRequest, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		Email:     req.Email,
		Password:  passwordHash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
