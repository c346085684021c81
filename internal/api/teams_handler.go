package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/arganhq/argan/internal/auth"
	"github.com/arganhq/argan/internal/metrics"
	"github.com/arganhq/argan/internal/team"
	"github.com/go-chi/chi/v5"
)

const maxTeamNameLength = 100

// teamsHandler groups team CRUD HTTP handlers. Every operation is scoped by
// the authenticated agency's id; the router guarantees the caller has the
// agency role.
type teamsHandler struct {
	svc     *team.Service
	metrics *metrics.Metrics
}

func newTeamsHandler(svc *team.Service, m *metrics.Metrics) *teamsHandler {
	return &teamsHandler{svc: svc, metrics: m}
}

// agencyID pulls the caller's agency id from the identity context. Returns
// "" after writing a 401 when the context has no identity.
func (h *teamsHandler) agencyID(w http.ResponseWriter, r *http.Request) string {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return ""
	}
	return id.ID
}

func validateTeamName(name string) []fieldError {
	var errs []fieldError
	if strings.TrimSpace(name) == "" {
		errs = append(errs, fieldError{"name", "name is required"})
	} else if len(name) > maxTeamNameLength {
		errs = append(errs, fieldError{"name", "must be at most 100 characters"})
	}
	return errs
}

// Create handles POST /api/v1/teams.
func (h *teamsHandler) Create(w http.ResponseWriter, r *http.Request) {
	agencyID := h.agencyID(w, r)
	if agencyID == "" {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse request body")
		return
	}
	if errs := validateTeamName(req.Name); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	t, err := h.svc.Create(r.Context(), strings.TrimSpace(req.Name), agencyID)
	if err != nil {
		if h.metrics != nil && errors.Is(err, team.ErrQuotaExceeded) {
			h.metrics.IncTeamQuotaRejection()
		}
		writeDomainError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Teams created successfully", t)
}

// List handles GET /api/v1/teams.
func (h *teamsHandler) List(w http.ResponseWriter, r *http.Request) {
	agencyID := h.agencyID(w, r)
	if agencyID == "" {
		return
	}

	teams, err := h.svc.List(r.Context(), agencyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if teams == nil {
		teams = []*team.Team{}
	}

	writeSuccess(w, http.StatusOK, "Teams retrieved successfully", teams)
}

// Count handles GET /api/v1/teams/count.
func (h *teamsHandler) Count(w http.ResponseWriter, r *http.Request) {
	agencyID := h.agencyID(w, r)
	if agencyID == "" {
		return
	}

	count, err := h.svc.Count(r.Context(), agencyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Teams retrieved successfully", map[string]int{
		"count":    count,
		"maxTeams": h.svc.MaxTeams(),
	})
}

// Get handles GET /api/v1/teams/{id}.
func (h *teamsHandler) Get(w http.ResponseWriter, r *http.Request) {
	agencyID := h.agencyID(w, r)
	if agencyID == "" {
		return
	}

	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), agencyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Teams retrieved successfully", t)
}

// Update handles PUT /api/v1/teams/{id}.
func (h *teamsHandler) Update(w http.ResponseWriter, r *http.Request) {
	agencyID := h.agencyID(w, r)
	if agencyID == "" {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse request body")
		return
	}
	if errs := validateTeamName(req.Name); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	t, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), agencyID, strings.TrimSpace(req.Name))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Teams updated successfully", t)
}

// Delete handles DELETE /api/v1/teams/{id}.
func (h *teamsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	agencyID := h.agencyID(w, r)
	if agencyID == "" {
		return
	}

	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), agencyID); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
