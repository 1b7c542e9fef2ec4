// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and resolving the user
// behind a presented session token.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/robodoc-one/gateway/internal/common"
	"github.com/robodoc-one/gateway/internal/server/auth"
	"github.com/robodoc-one/gateway/internal/server/config"
	"github.com/robodoc-one/gateway/internal/server/models"
	"github.com/robodoc-one/gateway/internal/server/repositories/users"
)

// UserService provides authentication-related operations:
// - Register: hash the password and create the user, minting a first token
// - Login: verify credentials and mint a token
// - ResolveUser: verify a token and load the user it asserts
type UserService struct {
	users                 users.Repository
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using the user repository and
// server config.
func NewUserService(repo users.Repository, cfg *config.Config) *UserService {
	return &UserService{
		users:                 repo,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new user with a bcrypt-hashed password and returns the
// stored user together with a fresh session token. A concurrent registration
// for the same email loses on the store's unique index and surfaces
// common.ErrDuplicateUser.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", common.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: string(hash)}
	u, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return nil, "", common.ErrDuplicateUser
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := auth.GenerateToken(u.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return u, token, nil
}

// Login verifies the credentials and, on success, returns a new session
// token. Unknown email and wrong password are indistinguishable to callers.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidCredentials
		}
		return "", common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrInvalidCredentials
	}

	return auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
}

// ResolveUser verifies the token and performs one store lookup for the user
// it asserts. The lookup is intentionally uncached so external account
// removal takes effect on the next request.
func (s *UserService) ResolveUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}

	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownUser
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}
