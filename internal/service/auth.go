// Authentication business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → Store (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// KEY RESPONSIBILITIES:
//   - Register: validate, enforce unique username/email, hash, insert, issue a token
//   - Login: verify credentials without revealing which half was wrong
//   - Keep every auth rule in one place, away from HTTP concerns
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// AuthService handles registration, login and the current-user lookup.
//
// DEPENDENCIES (injected via NewAuthService):
//   - store      repository.Store       → users table + transactions
//   - tokens     *auth.TokenService     → issue JWTs
//   - passwords  *auth.PasswordService  → bcrypt hashing
//   - logger     *slog.Logger           → structured logging
type AuthService struct {
	store     repository.Store
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	store repository.Store,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=80"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register creates an account and returns a token for it.
//
// The username is checked before the email, so a request that collides on
// both reports the username. The checks and the insert share a transaction;
// if a concurrent registration still wins the race, the repository maps the
// UNIQUE violation to the same conflict error.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	// max=72 above counts characters; bcrypt's limit is in bytes.
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password", fieldMessages["password.max"])
	}

	// Hash outside the transaction so the write lock is not held for the
	// duration of a bcrypt round.
	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		taken, err := tx.ExistsByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		if taken {
			return apperror.AlreadyExists("username", user.Username)
		}

		taken, err = tx.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperror.AlreadyExists("email", user.Email)
		}

		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Info("registration rejected",
				slog.String("reason", err.Error()),
			)
			return nil, err
		}
		return nil, wrap("service/auth: registering user", err)
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return s.result(user)
}

// Login checks credentials and returns a fresh token.
//
// An unknown email and a wrong password produce the identical
// InvalidCredentials error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)

	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("login failed", slog.String("reason", "unknown email"))
			return nil, apperror.InvalidCredentials()
		}
		return nil, wrap("service/auth: looking up user", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login failed",
				slog.String("reason", "wrong password"),
				slog.String("user_id", user.ID),
			)
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: verifying password for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return s.result(user)
}

// CurrentUser returns the profile of the authenticated user.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, wrap("service/auth: fetching user "+userID, err)
	}
	return user, nil
}

func (s *AuthService) result(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}
	return &AuthResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

// wrap adds context to infrastructure errors. Domain errors pass through
// untouched so the handler can still read their message.
func wrap(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
