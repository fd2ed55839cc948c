package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// MaxEmployeeIDLength bounds identities accepted from any provider.
const MaxEmployeeIDLength = 255

var (
	// ErrNoCredentials means the request presented nothing this provider reads.
	ErrNoCredentials = errors.New("no credentials presented")
	// ErrInvalidCredentials means a credential was presented but rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IdentityProvider resolves the employee behind a request.
type IdentityProvider interface {
	EmployeeID(r *http.Request) (string, error)
}

// ChainIdentity tries each provider in order and returns the first result
// that is not ErrNoCredentials. A rejected credential stops the chain.
type ChainIdentity []IdentityProvider

func (c ChainIdentity) EmployeeID(r *http.Request) (string, error) {
	for _, p := range c {
		id, err := p.EmployeeID(r)
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		return id, err
	}
	return "", ErrNoCredentials
}

func checkEmployeeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return "", fmt.Errorf("%w: empty employee id", ErrInvalidCredentials)
	case utf8.RuneCountInString(id) > MaxEmployeeIDLength:
		return "", fmt.Errorf("%w: employee id longer than %d characters", ErrInvalidCredentials, MaxEmployeeIDLength)
	}
	return id, nil
}
