package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sweetshop/sweet-api/internal/core/domain"
	"github.com/sweetshop/sweet-api/internal/core/ports"
)

// AuthService implements registration, login and admin bootstrap.
type AuthService struct {
	repo   ports.AuthRepository
	tokens ports.TokenIssuer
	logger zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.AuthRepository, tokens ports.TokenIssuer, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, logger: logger, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user, err := s.createUser(ctx, strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), email, in.Password, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return &ports.AuthResult{User: user, Token: token}, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user, s.now())
	if err != nil {
		return nil, err
	}

	return &ports.AuthResult{User: user, Token: token}, nil
}

// EnsureAdmin creates the bootstrap admin account unless one with the same
// email already exists. The returned bool is true when a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, false, errors.New("admin email and password are required")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, err
	}

	user, err := s.createUser(ctx, "admin", "user", email, password, domain.RoleAdmin)
	if err != nil {
		return nil, false, err
	}

	s.logger.Info().Str("email", email).Msg("admin user created")
	return user, true, nil
}

func (s *AuthService) createUser(ctx context.Context, firstName, lastName, email, password, role string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	return s.repo.Create(ctx, &domain.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
