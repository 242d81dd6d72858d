// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept primitives and context, return domain models and domain
// errors, and know nothing about HTTP. Every dependency arrives through the
// constructor as an interface, so tests swap in mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/auth"
	"github.com/sakif/codementor/internal/model"
	"github.com/sakif/codementor/internal/repository"
)

// Validation constants for registration.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 8
)

// usernamePattern allows letters, digits, underscores, and hyphens — the
// same character set that is safe to drop into a profile URL.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// AccountService owns registration, login, and the account→profile
// lifecycle invariant: every account is created together with exactly one
// gamification profile, in one transaction. There is no ambient "on user
// created" hook anywhere — profile provisioning is an explicit part of the
// registration contract, visible right here.
type AccountService struct {
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAccountService creates an AccountService with all dependencies.
func NewAccountService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		profiles:  profiles,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated user, their profile, and the issued
// JWT so the handler can set the cookie and respond in one step.
type AuthResult struct {
	User    *model.User
	Profile *model.UserProfile
	Token   string
}

// Register creates a new password-based account.
//
// VALIDATION IS ALL-OR-NOTHING: every rule is checked before anything is
// written, so a rejected registration leaves no partial state behind. The
// username-taken case surfaces as a Conflict from the repository's UNIQUE
// constraint — checking first and inserting after would just race.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d-%d characters", MinUsernameLength, MaxUsernameLength))
	}
	if !usernamePattern.MatchString(username) {
		return nil, apperror.ValidationFailed("username",
			"username may only contain letters, digits, underscores, and hyphens")
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "email address is invalid")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	// One transaction: user + default profile (0 points, level 1).
	profile, err := s.users.CreateWithProfile(ctx, user)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("username", "username is already taken")
		}
		return nil, fmt.Errorf("service/account: registering %s: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/account: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Profile: profile, Token: token}, nil
}

// Login authenticates a username/password pair and issues a JWT.
//
// The error for "no such user" and "wrong password" is deliberately the
// same, so a caller can't probe which usernames exist.
func (s *AccountService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.Unauthorized("invalid username or password")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid username or password")
		}
		return nil, fmt.Errorf("service/account: looking up %s: %w", username, err)
	}

	if user.PasswordHash == "" {
		// GitHub-only account — it has no password to check.
		return nil, apperror.Unauthorized("invalid username or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid username or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/account: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback: first login
// creates the account (with its profile, same invariant as Register);
// subsequent logins refresh the mutable GitHub-sourced fields.
func (s *AccountService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/account: GitHub user must not be nil")
	}

	user, err := s.users.GetUserByGitHubID(ctx, ghUser.ID)
	switch {
	case err == nil:
		// Returning user — refresh email/avatar in case they changed
		// them on GitHub.
		user.Email = ghUser.Email
		user.AvatarURL = ghUser.AvatarURL
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("service/account: refreshing GitHub user %s: %w", user.ID, err)
		}

	case errors.Is(err, apperror.ErrNotFound):
		// First login — create account + profile atomically. The GitHub
		// login doubles as the username; collide with an existing local
		// username and we suffix the numeric GitHub ID, which is unique.
		ghID := ghUser.ID
		user = &model.User{
			Username:  ghUser.Login,
			Email:     ghUser.Email,
			GitHubID:  &ghID,
			AvatarURL: ghUser.AvatarURL,
		}
		if _, err := s.users.CreateWithProfile(ctx, user); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				user.Username = fmt.Sprintf("%s-%d", ghUser.Login, ghUser.ID)
				if _, err := s.users.CreateWithProfile(ctx, user); err != nil {
					return nil, fmt.Errorf("service/account: creating GitHub user %s: %w", ghUser.Login, err)
				}
			} else {
				return nil, fmt.Errorf("service/account: creating GitHub user %s: %w", ghUser.Login, err)
			}
		}
		s.logger.Info("user registered via GitHub",
			slog.String("userID", user.ID),
			slog.String("login", ghUser.Login),
		)

	default:
		return nil, fmt.Errorf("service/account: looking up GitHub user %d: %w", ghUser.ID, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/account: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID. Used by /api/me.
func (s *AccountService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}
