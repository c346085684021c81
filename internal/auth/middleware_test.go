package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arganhq/argan/internal/token"
	"github.com/arganhq/argan/internal/user"
)

// --- mock lookup ---

type mockUserLookup struct {
	users     map[string]*user.User
	lookupErr error
}

func (m *mockUserLookup) GetByID(ctx context.Context, id string) (*user.User, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func newMiddlewareFixture() (*token.Service, *mockUserLookup) {
	tokens := token.NewService("test-secret", "argan-test", time.Hour)
	lookup := &mockUserLookup{
		users: map[string]*user.User{
			"agency-1": {ID: "agency-1", Name: "Acme", Email: "a@acme.com",
				Role: user.RoleAgency, Active: true, IsEmailVerified: true},
			"admin-1": {ID: "admin-1", Name: "Root", Email: "root@argan.com",
				Role: user.RoleAdmin, Active: true, IsEmailVerified: true},
			"inactive-1": {ID: "inactive-1", Name: "Gone", Email: "gone@acme.com",
				Role: user.RoleAgency, Active: false, IsEmailVerified: true},
		},
	}
	return tokens, lookup
}

func signFor(t *testing.T, tokens *token.Service, u *user.User) string {
	t.Helper()
	signed, err := tokens.Generate(u.ID, u.Email)
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestRequireAuth(t *testing.T) {
	tokens, lookup := newMiddlewareFixture()

	agencyToken := signFor(t, tokens, lookup.users["agency-1"])
	adminToken := signFor(t, tokens, lookup.users["admin-1"])
	inactiveToken := signFor(t, tokens, lookup.users["inactive-1"])
	orphanToken := signFor(t, tokens, &user.User{ID: "deleted-1", Email: "x@acme.com"})

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			t.Error("expected identity in context inside handler")
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		roles       []user.Role
		authHeader  string
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "valid token any role",
			authHeader: "Bearer " + agencyToken,
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid token matching role",
			roles:      []user.Role{user.RoleAgency},
			authHeader: "Bearer " + agencyToken,
			wantStatus: http.StatusOK,
		},
		{
			name:       "role from allowed set",
			roles:      []user.Role{user.RoleAgency, user.RoleAdmin},
			authHeader: "Bearer " + adminToken,
			wantStatus: http.StatusOK,
		},
		{
			name:        "missing header",
			authHeader:  "",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "No token provided",
		},
		{
			name:        "malformed header",
			authHeader:  "Token " + agencyToken,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "No token provided",
		},
		{
			name:        "garbage token",
			authHeader:  "Bearer not.a.jwt",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid token",
		},
		{
			name:        "token for deleted user",
			authHeader:  "Bearer " + orphanToken,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "User not found or inactive",
		},
		{
			name:        "inactive user",
			authHeader:  "Bearer " + inactiveToken,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "User not found or inactive",
		},
		{
			name:        "wrong role",
			roles:       []user.Role{user.RoleAdmin},
			authHeader:  "Bearer " + agencyToken,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Access denied. Insufficient permissions.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler := RequireAuth(tokens, lookup, tt.roles...)(okHandler)
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantMessage != "" {
				assertErrorEnvelope(t, rr, tt.wantStatus, tt.wantMessage)
			}
		})
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	tokens, lookup := newMiddlewareFixture()

	// A token whose exp claim already lies in the past.
	signed, err := tokens.GenerateWithTTL("agency-1", "a@acme.com", -time.Minute)
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()

	handler := RequireAuth(tokens, lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for expired token")
	}))
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	assertErrorEnvelope(t, rr, http.StatusUnauthorized, "Invalid token")
}

func TestRequireAuthStoreFailure(t *testing.T) {
	tokens, lookup := newMiddlewareFixture()
	signed := signFor(t, tokens, lookup.users["agency-1"])

	// A database outage must surface as a server error, not reject the
	// caller's credentials.
	lookup.lookupErr = errors.New("connection refused")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()

	handler := RequireAuth(tokens, lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run when the user lookup fails")
	}))
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	assertErrorEnvelope(t, rr, http.StatusInternalServerError, "Internal server error")
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"missing", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"scheme only", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := ExtractBearerToken(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	id := &Identity{ID: "u1", Name: "Acme", Email: "a@acme.com", Role: user.RoleAgency}
	ctx := ContextWithIdentity(context.Background(), id)
	got := IdentityFromContext(ctx)
	if got == nil {
		t.Fatal("expected identity, got nil")
	}
	if got.ID != "u1" {
		t.Errorf("expected ID u1, got %q", got.ID)
	}
}

func TestIdentityFromEmptyContext(t *testing.T) {
	if got := IdentityFromContext(context.Background()); got != nil {
		t.Errorf("expected nil from empty context, got %+v", got)
	}
}

func assertErrorEnvelope(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int, wantMessage string) {
	t.Helper()

	ct := rr.Header().Get("Content-Type")
	if !strings.Contains(ct, "application/json") {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	var resp envelope
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Message != wantMessage {
		t.Errorf("expected message %q, got %q", wantMessage, resp.Message)
	}
	if resp.StatusCode != wantStatus {
		t.Errorf("expected statusCode %d, got %d", wantStatus, resp.StatusCode)
	}
}
