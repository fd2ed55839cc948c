package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-jwt-secret-that-is-32-bytes!")

func bearerRequest(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/inventory/x", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestTokenIdentity_Valid(t *testing.T) {
	p := NewTokenIdentity(testSecret, "haven-staff")
	token, err := p.IssueToken("emp-42", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := p.EmployeeID(bearerRequest(token))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "emp-42" {
		t.Fatalf("expected emp-42, got %q", got)
	}
}

func TestTokenIdentity_NoHeader(t *testing.T) {
	p := NewTokenIdentity(testSecret, "")
	for _, h := range []string{"", "Basic dXNlcjpwYXNz", "Bearer ", "Bearer"} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if h != "" {
			r.Header.Set("Authorization", h)
		}
		if _, err := p.EmployeeID(r); !errors.Is(err, ErrNoCredentials) {
			t.Fatalf("header %q: expected ErrNoCredentials, got %v", h, err)
		}
	}
}

func TestTokenIdentity_Rejected(t *testing.T) {
	p := NewTokenIdentity(testSecret, "haven-staff")
	now := time.Now()

	expired, _ := p.IssueToken("emp-1", time.Minute, now.Add(-time.Hour))
	wrongKey, _ := NewTokenIdentity([]byte("another-secret-another-secret-!!"), "haven-staff").IssueToken("emp-1", time.Hour, now)
	wrongIssuer, _ := NewTokenIdentity(testSecret, "someone-else").IssueToken("emp-1", time.Hour, now)
	noSubject, _ := p.IssueToken("", time.Hour, now)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "emp-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "emp-1",
		Issuer:  "haven-staff",
	}).SignedString(testSecret)

	tests := map[string]string{
		"expired":      expired,
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
		"no subject":   noSubject,
		"alg none":     none,
		"no expiry":    noExpiry,
		"garbage":      "not.a.jwt",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := p.EmployeeID(bearerRequest(token))
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestTokenIdentity_OversizedSubject(t *testing.T) {
	p := NewTokenIdentity(testSecret, "")
	token, err := p.IssueToken(strings.Repeat("e", MaxEmployeeIDLength+1), time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := p.EmployeeID(bearerRequest(token)); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
