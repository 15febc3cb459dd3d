// Package service holds the business logic, between the HTTP handlers and
// the repository interfaces:
//
//	handler (HTTP) → service (rules) → repository (storage)
//
// Services return apperror values for expected failures (validation,
// missing records, permission) and wrapped plain errors for everything
// else; the handlers translate both into the JSON envelope.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/auth"
	mailer "github.com/tasnim/travelmate/internal/mail"
	"github.com/tasnim/travelmate/internal/model"
	"github.com/tasnim/travelmate/internal/repository"
)

const minPasswordLength = 6

// UserService handles registration, login, account lifecycle and the
// password-reset flow.
type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	mailer    mailer.Mailer
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	m mailer.Mailer,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		mailer:    m,
		logger:    logger,
	}
}

// AuthResult bundles a user with a freshly issued access token so the
// handler can respond (and optionally set a cookie) in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// RegisterInput carries the registration form. Name, Email, Password,
// Status and Location are required; the rest is optional profile data.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	Status          string
	Location        string
	ProfilePicURL   string
	TravelPrefs     []string
	SocialMediaLink string
}

// Register creates an account and signs the new user in. A duplicate email
// surfaces as a validation error from the repository's unique constraint,
// so concurrent registrations can never produce a second row.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Location = strings.TrimSpace(in.Location)

	switch {
	case in.Name == "":
		return nil, apperror.ValidationFailed("name", "name is required")
	case in.Email == "":
		return nil, apperror.ValidationFailed("email", "email is required")
	case in.Password == "":
		return nil, apperror.ValidationFailed("password", "password is required")
	case in.Status == "":
		return nil, apperror.ValidationFailed("status", "status is required")
	case in.Location == "":
		return nil, apperror.ValidationFailed("location", "location is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperror.ValidationFailed("email", "invalid email address")
	}
	if !model.ValidStatus(in.Status) {
		return nil, apperror.ValidationFailed("status", "status must be Private, Travelling or Local")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/user: hashing password: %w", err)
	}

	user := &model.User{
		Email:           in.Email,
		PasswordHash:    hash,
		Name:            in.Name,
		Location:        in.Location,
		Status:          in.Status,
		ProfilePicURL:   in.ProfilePicURL,
		TravelPrefs:     in.TravelPrefs,
		SocialMediaLink: in.SocialMediaLink,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	token, err := s.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("service/user: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the email/password pair. Unknown email and wrong password
// produce the same Unauthorized error so the response never reveals which
// one was wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("service/user: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Me returns the authenticated caller's record.
func (s *UserService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Delete removes the caller's account. The schema cascades the deletion to
// the user's itineraries and to messages they sent or received.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user deleted", slog.String("userID", userID))
	return nil
}

// ListUsers returns every account. The admin check lives in the router
// middleware; this method assumes the caller is already authorised.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// ForgotPassword issues a short-lived reset token for the account behind
// email and hands it to the mailer. The token is signed with a secret
// separate from access tokens, so a leaked reset token can never
// authenticate a request.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.GenerateReset(user.ID)
	if err != nil {
		return fmt.Errorf("service/user: generating reset token for user %s: %w", user.ID, err)
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		return fmt.Errorf("service/user: sending reset token: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token and stores a new password hash.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperror.ValidationFailed("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	userID, err := s.tokens.ValidateReset(token)
	if err != nil {
		return apperror.Unauthorized("invalid or expired reset token")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("service/user: hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset", slog.String("userID", userID))
	return nil
}

// LoginOrRegisterGitHub finishes the optional GitHub OAuth flow: upsert on
// the stable GitHub user ID (create on first sign-in, refresh profile data
// after), then issue an access token. GitHub accounts are provisioned
// Private with no usable password.
func (s *UserService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/user: GitHub user must not be nil")
	}

	// Accounts with a hidden email all arrive with Email == "", which would
	// collide on the unique email column from the second such sign-in on.
	// GitHub's noreply convention gives each a distinct, stable placeholder.
	email := ghUser.Email
	if email == "" {
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", ghUser.ID, ghUser.Login)
	}

	name := ghUser.Login
	user := &model.User{
		GitHubID:      ghUser.ID,
		Email:         email,
		Name:          name,
		Status:        model.StatusPrivate,
		ProfilePicURL: ghUser.AvatarURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/user: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.InfoContext(ctx, "user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", ghUser.Login),
	)

	token, err := s.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("service/user: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
