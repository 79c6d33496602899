package ports

import (
	"context"
	"time"

	"github.com/sweetshop/sweet-api/internal/core/domain"
)

// RegisterInput carries the fields of a self-service registration.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User  *domain.User
	Token string
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(user *domain.User, now time.Time) (string, error)
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	EnsureAdmin(ctx context.Context, email, password string) (*domain.User, bool, error)
}
