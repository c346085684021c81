package user

import (
	"strings"
	"time"
)

// Role is the closed set of account roles. It is a defined type so a bare
// string cannot be passed where a Role is expected.
type Role string

const (
	// RoleAgency is a tenant-owning account; teams are scoped to it.
	RoleAgency Role = "agency"
	// RoleGeneral is a regular member account.
	RoleGeneral Role = "general"
	// RoleAdmin is a platform administrator.
	RoleAdmin Role = "admin"
)

// User represents a registered account. The email+role pair is unique, so
// the same address may exist once per role.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Role            Role       `json:"role"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	Active          bool       `json:"active"`

	// Single active verification token and its expiry; cleared on consumption.
	VerificationToken        *string    `json:"-"`
	VerificationTokenExpires *time.Time `json:"-"`

	// Single active password-reset token and its expiry; cleared on consumption.
	ResetToken        *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address. All store lookups
// expect normalized addresses.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUserInput holds the fields required to create a new user. Password
// must already be hashed by the caller.
type CreateUserInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}
