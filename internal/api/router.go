package api

import (
	"context"
	"net/http"

	"github.com/arganhq/argan/internal/auth"
	"github.com/arganhq/argan/internal/metrics"
	"github.com/arganhq/argan/internal/ratelimit"
	"github.com/arganhq/argan/internal/team"
	"github.com/arganhq/argan/internal/user"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// UserDirectory is the slice of the user store the router needs: subject
// lookups for the access gate and listing for the admin surface.
// *user.Store satisfies it.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
}

// Pinger reports database connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Auth    *auth.Service
	Teams   *team.Service
	Users   UserDirectory
	Tokens  auth.TokenValidator
	Limiter *ratelimit.Limiter
	Metrics *metrics.Metrics
	DB      Pinger
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(secureHeaders)
	r.Use(slogRequestLogger)
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}

	// Handlers.
	authH := newAuthHandler(deps.Auth, deps.Metrics)
	teamsH := newTeamsHandler(deps.Teams, deps.Metrics)
	usersH := newUsersHandler(deps.Users)

	// Health check.
	r.Get("/health", healthHandler(deps.DB))

	// Metrics summary.
	if deps.Metrics != nil {
		r.Get("/metrics", deps.Metrics.Handler())
	}

	// Public auth routes, rate limited per client IP.
	r.Route("/api/v1/auth", func(ar chi.Router) {
		if deps.Limiter != nil {
			var onReject []func()
			if deps.Metrics != nil {
				onReject = append(onReject, deps.Metrics.IncRateLimitRejection)
			}
			ar.Use(ratelimit.Middleware(deps.Limiter, onReject...))
		}

		ar.Post("/register", authH.Register)
		ar.Post("/login", authH.Login)
		ar.Post("/verify-email", authH.VerifyEmail)
		ar.Post("/forgot-password", authH.ForgotPassword)
		ar.Post("/reset-password", authH.ResetPassword)

		// Any authenticated user may read their own profile.
		ar.Group(func(pr chi.Router) {
			pr.Use(auth.RequireAuth(deps.Tokens, deps.Users))
			pr.Get("/me", authH.Me)
		})
	})

	// Team routes require an authenticated agency account.
	r.Route("/api/v1/teams", func(tr chi.Router) {
		tr.Use(auth.RequireAuth(deps.Tokens, deps.Users, user.RoleAgency))

		tr.Post("/", teamsH.Create)
		tr.Get("/", teamsH.List)
		tr.Get("/count", teamsH.Count)
		tr.Get("/{id}", teamsH.Get)
		tr.Put("/{id}", teamsH.Update)
		tr.Delete("/{id}", teamsH.Delete)
	})

	// Admin routes.
	r.Route("/api/v1/admin", func(ar chi.Router) {
		ar.Use(auth.RequireAuth(deps.Tokens, deps.Users, user.RoleAdmin))

		ar.Get("/users", usersH.ListUsers)
	})

	return r
}

// healthHandler reports service and database status.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		database := "connected"
		status := "ok"
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				database = "disconnected"
				status = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_, _ = w.Write([]byte(`{"status":"` + status + `","database":"` + database + `"}`))
	}
}
