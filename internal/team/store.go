package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no team matches the id within the caller's
	// agency scope. A team owned by another agency looks exactly the same.
	ErrNotFound = errors.New("team not found")

	// ErrDuplicateName is returned when the agency already has a team with
	// that name.
	ErrDuplicateName = errors.New("team name already exists")
)

const teamColumns = `id, name, agency_id, created_at, updated_at`

// Store provides database operations for teams. Every query is scoped by
// agency id.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new team store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanTeam(scan func(dest ...any) error) (*Team, error) {
	t := &Team{}
	err := scan(&t.ID, &t.Name, &t.AgencyID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Insert creates a team for the given agency.
func (s *Store) Insert(ctx context.Context, name, agencyID string) (*Team, error) {
	t, err := scanTeam(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO teams (name, agency_id)
			 VALUES ($1, $2)
			 RETURNING `+teamColumns,
			name, agencyID,
		).Scan(dest...)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("creating team: %w", err)
	}
	return t, nil
}

// CountByAgency returns the number of teams owned by the agency.
func (s *Store) CountByAgency(ctx context.Context, agencyID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM teams WHERE agency_id = $1`, agencyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting teams: %w", err)
	}
	return count, nil
}

// ListByAgency returns the agency's teams, newest first.
func (s *Store) ListByAgency(ctx context.Context, agencyID string) ([]*Team, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+teamColumns+` FROM teams
		 WHERE agency_id = $1 ORDER BY created_at DESC`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []*Team
	for rows.Next() {
		t, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// GetByID retrieves a team by id within the agency scope.
func (s *Store) GetByID(ctx context.Context, id, agencyID string) (*Team, error) {
	t, err := scanTeam(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT `+teamColumns+` FROM teams
			 WHERE id = $1 AND agency_id = $2`, id, agencyID,
		).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting team: %w", err)
	}
	return t, nil
}

// Update renames a team within the agency scope.
func (s *Store) Update(ctx context.Context, id, agencyID, name string) (*Team, error) {
	t, err := scanTeam(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`UPDATE teams SET name = $1, updated_at = now()
			 WHERE id = $2 AND agency_id = $3
			 RETURNING `+teamColumns,
			name, id, agencyID,
		).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("updating team: %w", err)
	}
	return t, nil
}

// Delete removes a team within the agency scope. Returns ErrNotFound when
// no row matched.
func (s *Store) Delete(ctx context.Context, id, agencyID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM teams WHERE id = $1 AND agency_id = $2`, id, agencyID)
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
