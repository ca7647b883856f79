package user

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email is already registered")
	ErrEmailRequired = errors.New("email is required")
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
}
