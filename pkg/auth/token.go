package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIdentity resolves `Authorization: Bearer <jwt>` headers signed with
// HS256. The employee ID is the token subject.
type TokenIdentity struct {
	secret []byte
	issuer string
}

// NewTokenIdentity returns a provider verifying tokens with secret. When
// issuer is non-empty the iss claim must match it.
func NewTokenIdentity(secret []byte, issuer string) *TokenIdentity {
	return &TokenIdentity{secret: secret, issuer: issuer}
}

func (t *TokenIdentity) EmployeeID(r *http.Request) (string, error) {
	raw, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return "", ErrNoCredentials
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return checkEmployeeID(claims.Subject)
}

// IssueToken signs an HS256 token for employeeID valid for ttl.
func (t *TokenIdentity) IssueToken(employeeID string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   employeeID,
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
