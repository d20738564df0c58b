package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("user already exists with this email")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// A single error shape prevents user enumeration; logs distinguish
	// the two internally.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service struct {
	repo       Repository
	tokens     *TokenService
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, tokens *TokenService, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// NormalizeEmail fixes the email case policy: addresses are compared
// lowercased and trimmed, applied at register and login time.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account. It does not log the user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return 0, err
	}

	user := &User{
		Email:        NormalizeEmail(req.Email),
		PasswordHash: string(hash),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return 0, err
	}

	return created.ID, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.InfoContext(ctx, "login failed: user not found")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.InfoContext(ctx, "login failed: password mismatch", "user_id", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
