package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arganhq/argan/internal/token"
	"github.com/arganhq/argan/internal/user"
)

// UserLookup resolves a token subject to the current user record.
// *user.Store satisfies it.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// TokenValidator verifies bearer tokens. *token.Service satisfies it.
type TokenValidator interface {
	Validate(tokenString string) (*token.Claims, error)
}

// RequireAuth returns middleware that authenticates the request and injects
// the identity into the context. If roles is non-empty the loaded user's
// role must be one of them; an empty set means any authenticated user.
//
// The checks run in a fixed order (token presence, signature/expiry, user
// load, active flag, then role) so an authentication failure always
// preempts an authorization one.
func RequireAuth(tokens TokenValidator, users UserLookup, roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer := ExtractBearerToken(r)
			if bearer == "" {
				writeUnauthorized(w, "No token provided")
				return
			}

			claims, err := tokens.Validate(bearer)
			if err != nil {
				writeUnauthorized(w, "Invalid token")
				return
			}

			u, err := users.GetByID(r.Context(), claims.Subject)
			if err != nil {
				// A store outage is not an authentication failure.
				if !errors.Is(err, user.ErrNotFound) {
					slog.Error("loading authenticated user", "error", err, "user_id", claims.Subject)
					writeInternalError(w)
					return
				}
				writeUnauthorized(w, "User not found or inactive")
				return
			}
			if u == nil || !u.Active {
				writeUnauthorized(w, "User not found or inactive")
				return
			}

			ctx := ContextWithIdentity(r.Context(), &Identity{
				ID:              u.ID,
				Name:            u.Name,
				Email:           u.Email,
				Role:            u.Role,
				IsEmailVerified: u.IsEmailVerified,
			})

			if len(roles) > 0 && !hasRole(u.Role, roles) {
				writeForbidden(w, "Access denied. Insufficient permissions.")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasRole(role user.Role, allowed []user.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// ExtractBearerToken pulls the token out of an "Authorization: Bearer x"
// header, or returns "" if the header is absent or malformed.
func ExtractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// envelope matches the API error envelope; duplicated here to avoid a
// dependency cycle with the api package.
type envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusUnauthorized, "Unauthorized", message)
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusForbidden, "Forbidden", message)
}

func writeInternalError(w http.ResponseWriter) {
	writeEnvelope(w, http.StatusInternalServerError, "Internal Server Error", "Internal server error")
}

func writeEnvelope(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:    false,
		Message:    message,
		Error:      errType,
		StatusCode: status,
	})
}
