package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arganhq/argan/internal/user"
)

// UserStore is the credential-store contract the lifecycle engine needs.
// *user.Store satisfies it.
type UserStore interface {
	Create(ctx context.Context, in user.CreateUserInput) (*user.User, error)
	Delete(ctx context.Context, id string) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByEmailAndRole(ctx context.Context, email string, role user.Role) (*user.User, error)
	SetVerificationToken(ctx context.Context, email string, role user.Role, token string, expires time.Time) error
	ConsumeVerificationToken(ctx context.Context, token string) (*user.User, error)
	SetResetToken(ctx context.Context, id string, token string, expires time.Time) error
	ConsumeResetToken(ctx context.Context, token string, passwordHash string) (*user.User, error)
}

// EmailSender delivers templated verification and reset emails.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, email, name, token string) error
	SendPasswordResetEmail(ctx context.Context, email, name, token string) error
}

// TokenIssuer signs bearer tokens. *token.Service satisfies it.
type TokenIssuer interface {
	Generate(subject, email string) (string, error)
	GenerateWithExpiry(subject, email string, ttl time.Duration) (string, time.Time, error)
}

// Profile is the redacted user projection returned to clients. It never
// carries the password hash or token fields.
type Profile struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            user.Role `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
}

// LoginResult is the successful login payload.
type LoginResult struct {
	AccessToken string  `json:"access_token"`
	User        Profile `json:"user"`
}

// Service orchestrates the account lifecycle (register, verify, login,
// forgot, reset) over the user store, the token service and the email
// sender.
type Service struct {
	users           UserStore
	tokens          TokenIssuer
	sender          EmailSender
	verificationTTL time.Duration
	resetTTL        time.Duration
}

// NewService creates the lifecycle engine. verificationTTL bounds the
// emailed verification token, resetTTL the password-reset token.
func NewService(users UserStore, tokens TokenIssuer, sender EmailSender, verificationTTL, resetTTL time.Duration) *Service {
	return &Service{
		users:           users,
		tokens:          tokens,
		sender:          sender,
		verificationTTL: verificationTTL,
		resetTTL:        resetTTL,
	}
}

func toProfile(u *user.User) Profile {
	return Profile{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
	}
}

// Register creates an agency account and emails a verification link. If any
// step after user creation fails, the just-created user is deleted again and
// the original error propagates, so registration is all-or-nothing from the
// caller's perspective. The cleanup delete is best effort.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	email = user.NormalizeEmail(email)

	_, err := s.users.GetByEmailAndRole(ctx, email, user.RoleAgency)
	if err == nil {
		return ErrEmailExists
	}
	if !errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	u, err := s.users.Create(ctx, user.CreateUserInput{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleAgency,
	})
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	if err := s.issueVerification(ctx, u); err != nil {
		if delErr := s.users.Delete(ctx, u.ID); delErr != nil {
			slog.Error("registration cleanup failed", "user_id", u.ID, "error", delErr)
		}
		return err
	}

	return nil
}

// issueVerification signs a verification token, persists it and dispatches
// the email. The stored expiry is the signed token's exp claim, so the two
// never drift apart.
func (s *Service) issueVerification(ctx context.Context, u *user.User) error {
	verificationToken, expires, err := s.tokens.GenerateWithExpiry(u.ID, u.Email, s.verificationTTL)
	if err != nil {
		return fmt.Errorf("generating verification token: %w", err)
	}

	if err := s.users.SetVerificationToken(ctx, u.Email, u.Role, verificationToken, expires); err != nil {
		return fmt.Errorf("storing verification token: %w", err)
	}

	if err := s.sender.SendVerificationEmail(ctx, u.Email, u.Name, verificationToken); err != nil {
		return fmt.Errorf("sending verification email: %w", err)
	}

	return nil
}

// Login authenticates an agency account by email and password and issues a
// bearer token. Unknown email, non-agency role and password mismatch all
// collapse to ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = user.NormalizeEmail(email)

	u, err := s.users.GetByEmailAndRole(ctx, email, user.RoleAgency)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if !u.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	accessToken, err := s.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &LoginResult{
		AccessToken: accessToken,
		User:        toProfile(u),
	}, nil
}

// VerifyEmail consumes a verification token. Wrong token, expired token and
// already-verified account are indistinguishable to the caller.
func (s *Service) VerifyEmail(ctx context.Context, verificationToken string) error {
	_, err := s.users.ConsumeVerificationToken(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrTokenInvalidOrExpired
		}
		return fmt.Errorf("verifying email: %w", err)
	}
	return nil
}

// ForgotPassword issues a reset token and emails it. It deliberately
// reports nothing about whether the email exists; unknown addresses are a
// silent no-op. The token is stored against the resolved account's id, so
// when the same address exists under several roles only that one account
// can be reset with it.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = user.NormalizeEmail(email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	resetToken, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}
	expires := time.Now().Add(s.resetTTL)

	if err := s.users.SetResetToken(ctx, u.ID, resetToken, expires); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	if err := s.sender.SendPasswordResetEmail(ctx, u.Email, u.Name, resetToken); err != nil {
		return fmt.Errorf("sending reset email: %w", err)
	}

	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	_, err = s.users.ConsumeResetToken(ctx, resetToken, hash)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrTokenInvalidOrExpired
		}
		return fmt.Errorf("resetting password: %w", err)
	}
	return nil
}

// generateResetToken returns a 64-char hex token from 32 random bytes.
func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
