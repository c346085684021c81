package api

import (
	"context"
	"net/http"

	"github.com/arganhq/argan/internal/auth"
	"github.com/arganhq/argan/internal/user"
)

// UserLister lists user accounts. *user.Store satisfies it.
type UserLister interface {
	List(ctx context.Context) ([]*user.User, error)
}

// usersHandler groups admin-only user management handlers.
type usersHandler struct {
	store UserLister
}

func newUsersHandler(store UserLister) *usersHandler {
	return &usersHandler{store: store}
}

// ListUsers handles GET /api/v1/admin/users. Responses carry the redacted
// projection only.
func (h *usersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	profiles := make([]auth.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, auth.Profile{
			ID:              u.ID,
			Name:            u.Name,
			Email:           u.Email,
			Role:            u.Role,
			IsEmailVerified: u.IsEmailVerified,
		})
	}

	writeSuccess(w, http.StatusOK, "Users retrieved successfully", profiles)
}
