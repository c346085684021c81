package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestService(secret string) *Service {
	return NewService(secret, "argan-test", time.Hour)
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService("test-secret")

	signed, err := svc.Generate("user-1", "anna@example.com")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if signed == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := svc.Validate(signed)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %q", claims.Subject)
	}
	if claims.Email != "anna@example.com" {
		t.Errorf("expected email anna@example.com, got %q", claims.Email)
	}
	if claims.Issuer != "argan-test" {
		t.Errorf("expected issuer argan-test, got %q", claims.Issuer)
	}
}

func TestGenerateWithExpiry(t *testing.T) {
	svc := newTestService("test-secret")
	start := time.Now()

	signed, expires, err := svc.GenerateWithExpiry("user-1", "anna@example.com", 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateWithExpiry() error: %v", err)
	}

	// The returned expiry should be about 24h out.
	want := start.Add(24 * time.Hour)
	if expires.Before(want.Add(-time.Minute)) || expires.After(want.Add(time.Minute)) {
		t.Errorf("expected expiry near %v, got %v", want, expires)
	}

	claims, err := svc.Validate(signed)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if !claims.ExpiresAt.Time.Equal(expires.Truncate(time.Second)) {
		t.Errorf("signed exp claim %v should match returned expiry %v",
			claims.ExpiresAt.Time, expires.Truncate(time.Second))
	}
}

func TestValidateExpired(t *testing.T) {
	svc := newTestService("test-secret")

	issued := time.Now()
	svc.now = func() time.Time { return issued }

	signed, err := svc.GenerateWithTTL("user-1", "anna@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateWithTTL() error: %v", err)
	}

	// Still valid just before expiry.
	svc.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if _, err := svc.Validate(signed); err != nil {
		t.Fatalf("token should still be valid before expiry: %v", err)
	}

	// Invalid after expiry.
	svc.now = func() time.Time { return issued.Add(61 * time.Minute) }
	if _, err := svc.Validate(signed); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for expired token, got %v", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	svc := newTestService("secret-a")
	other := newTestService("secret-b")

	signed, err := svc.Generate("user-1", "anna@example.com")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if _, err := other.Validate(signed); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for wrong secret, got %v", err)
	}
}

func TestValidateTampered(t *testing.T) {
	svc := newTestService("test-secret")

	signed, err := svc.Generate("user-1", "anna@example.com")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := svc.Validate(tampered); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for tampered token, got %v", err)
	}
}

func TestValidateMalformed(t *testing.T) {
	svc := newTestService("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"two segments", "aaaa.bbbb"},
		{"whitespace", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Validate(tt.token); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidateRejectsUnsignedToken(t *testing.T) {
	svc := newTestService("test-secret")

	// alg=none token with an empty signature segment.
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJzdWIiOiJ1c2VyLTEifQ."
	if _, err := svc.Validate(unsigned); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unsigned token, got %v", err)
	}
}
