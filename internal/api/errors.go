package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/arganhq/argan/internal/auth"
	"github.com/arganhq/argan/internal/team"
)

// writeDomainError maps a domain error to an HTTP status and the error
// envelope. Unknown errors become a generic 500; their message is logged
// but never sent to the client.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusUnprocessableEntity, "Email is already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, auth.ErrEmailNotVerified):
		writeError(w, http.StatusBadRequest, "Please verify your email before logging in")
	case errors.Is(err, auth.ErrTokenInvalidOrExpired):
		writeError(w, http.StatusBadRequest, "Invalid or expired token")
	case errors.Is(err, team.ErrQuotaExceeded):
		writeError(w, http.StatusForbidden, "Maximum number of teams reached for this agency")
	case errors.Is(err, team.ErrDuplicateName):
		writeError(w, http.StatusConflict, "A team with this name already exists")
	case errors.Is(err, team.ErrNotFound):
		writeError(w, http.StatusNotFound, "Team not found")
	default:
		slog.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
