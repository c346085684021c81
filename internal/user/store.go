package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no user matches the query. For the token
// consumption operations it also covers "token already used" and "token
// expired" — callers cannot tell those apart, which is intentional.
var ErrNotFound = errors.New("user not found")

const userColumns = `id, name, email, password_hash, role, is_email_verified, active,
	 email_verification_token, email_verification_token_expires,
	 password_reset_token, password_reset_token_expires,
	 created_at, updated_at`

// Store provides database operations for user accounts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new user store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanUser(scan func(dest ...any) error) (*User, error) {
	u := &User{}
	err := scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsEmailVerified, &u.Active,
		&u.VerificationToken, &u.VerificationTokenExpires,
		&u.ResetToken, &u.ResetTokenExpires,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// Create inserts a new user. The caller supplies the password hash.
func (s *Store) Create(ctx context.Context, in CreateUserInput) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO users (name, email, password_hash, role)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+userColumns,
			in.Name, in.Email, in.PasswordHash, in.Role,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
		).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return u, nil
}

// GetByEmailAndRole retrieves a user by email address within a role.
func (s *Store) GetByEmailAndRole(ctx context.Context, email string, role Role) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1 AND role = $2`,
			email, role,
		).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email address regardless of role.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`,
			email,
		).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// List returns all users ordered by created_at DESC.
func (s *Store) List(ctx context.Context) ([]*User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Delete removes a user by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// MarkEmailVerified flips the verified flag without a token exchange. Used
// by the seed command to provision accounts that never went through the
// verification flow.
func (s *Store) MarkEmailVerified(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET is_email_verified = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking email verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVerificationToken stores a pending email-verification token and its
// expiry on the user with the given email and role.
func (s *Store) SetVerificationToken(ctx context.Context, email string, role Role, token string, expires time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET email_verification_token = $1,
		     email_verification_token_expires = $2,
		     updated_at = now()
		 WHERE email = $3 AND role = $4`,
		token, expires, email, role,
	)
	if err != nil {
		return fmt.Errorf("setting verification token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeVerificationToken marks the matching user as verified and clears
// the token fields. The match and mutation happen in a single statement, so
// of two concurrent calls with the same token exactly one wins; the loser
// gets ErrNotFound because the token has already been cleared.
func (s *Store) ConsumeVerificationToken(ctx context.Context, token string) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`UPDATE users
			 SET is_email_verified = true,
			     email_verification_token = NULL,
			     email_verification_token_expires = NULL,
			     updated_at = now()
			 WHERE email_verification_token = $1
			   AND email_verification_token_expires > now()
			 RETURNING `+userColumns,
			token,
		).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("consuming verification token: %w", err)
	}
	return u, nil
}

// SetResetToken stores a pending password-reset token on the user with the
// given id. Scoping by id matters: the same email may exist once per role,
// and a reset must only ever touch the single account it was requested for.
// A newer request replaces any previous token.
func (s *Store) SetResetToken(ctx context.Context, id string, token string, expires time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET password_reset_token = $1,
		     password_reset_token_expires = $2,
		     updated_at = now()
		 WHERE id = $3`,
		token, expires, id,
	)
	if err != nil {
		return fmt.Errorf("setting reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeResetToken stores the new password hash on the matching user and
// clears the reset token fields in one atomic statement. Tokens are stamped
// on exactly one row by SetResetToken, so the match is a single account.
func (s *Store) ConsumeResetToken(ctx context.Context, token string, passwordHash string) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`UPDATE users
			 SET password_hash = $1,
			     password_reset_token = NULL,
			     password_reset_token_expires = NULL,
			     updated_at = now()
			 WHERE password_reset_token = $2
			   AND password_reset_token_expires > now()
			 RETURNING `+userColumns,
			passwordHash, token,
		).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("consuming reset token: %w", err)
	}
	return u, nil
}
