package service

import (
	"context"
	"errors"

	"github.com/angleinstitute/backend/internal/model"
)

var (
	// ErrUsernameTaken is returned by Signup for an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// SignupInput carries the fields required to create an admin account.
type SignupInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	MobileNo  string
}

// TokenIssuer issues bearer tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthService registers and authenticates admin users.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, string, error)
	Login(ctx context.Context, username, password string) (*model.User, string, error)
}
