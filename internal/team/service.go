package team

import (
	"context"
	"errors"
	"fmt"
)

// ErrQuotaExceeded is returned when an agency is at its team cap.
var ErrQuotaExceeded = errors.New("team limit exceeded")

// TeamStore is the storage contract the service needs. *Store satisfies it.
type TeamStore interface {
	Insert(ctx context.Context, name, agencyID string) (*Team, error)
	CountByAgency(ctx context.Context, agencyID string) (int, error)
	ListByAgency(ctx context.Context, agencyID string) ([]*Team, error)
	GetByID(ctx context.Context, id, agencyID string) (*Team, error)
	Update(ctx context.Context, id, agencyID, name string) (*Team, error)
	Delete(ctx context.Context, id, agencyID string) error
}

// Service enforces the per-agency team quota and scopes every operation to
// the calling agency. The quota is checked at creation time only.
type Service struct {
	store    TeamStore
	maxTeams int
}

// NewService creates the team service with a fixed per-agency cap.
func NewService(store TeamStore, maxTeams int) *Service {
	return &Service{store: store, maxTeams: maxTeams}
}

// MaxTeams returns the per-agency cap.
func (s *Service) MaxTeams() int {
	return s.maxTeams
}

// Create inserts a team unless the agency is already at the cap.
func (s *Service) Create(ctx context.Context, name, agencyID string) (*Team, error) {
	count, err := s.store.CountByAgency(ctx, agencyID)
	if err != nil {
		return nil, fmt.Errorf("checking team quota: %w", err)
	}
	if count >= s.maxTeams {
		return nil, ErrQuotaExceeded
	}

	return s.store.Insert(ctx, name, agencyID)
}

// List returns the agency's teams.
func (s *Service) List(ctx context.Context, agencyID string) ([]*Team, error) {
	return s.store.ListByAgency(ctx, agencyID)
}

// Count returns the agency's current team count.
func (s *Service) Count(ctx context.Context, agencyID string) (int, error) {
	return s.store.CountByAgency(ctx, agencyID)
}

// Get returns a team by id. A team owned by a different agency is
// indistinguishable from a missing one.
func (s *Service) Get(ctx context.Context, id, agencyID string) (*Team, error) {
	return s.store.GetByID(ctx, id, agencyID)
}

// Update renames a team within the caller's agency.
func (s *Service) Update(ctx context.Context, id, agencyID, name string) (*Team, error) {
	return s.store.Update(ctx, id, agencyID, name)
}

// Delete removes a team within the caller's agency.
func (s *Service) Delete(ctx context.Context, id, agencyID string) error {
	return s.store.Delete(ctx, id, agencyID)
}
