// Package errhttp maps domain sentinel errors to HTTP responses.
// Add a case to Status for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/havenops/stockledger/pkg/httpx"
	"github.com/havenops/stockledger/services/inventory/domain"
)

// RetryAfterSeconds is sent with 409 responses for items under a held lock.
const RetryAfterSeconds = "1"

// WriteError maps err to a status code and writes the error envelope.
// Uses errors.Is so wrapped sentinels match. Unrecognized errors become a
// generic 500; their detail is logged by the caller, never sent.
func WriteError(w http.ResponseWriter, err error) {
	status := Status(err)
	switch status {
	case http.StatusUnprocessableEntity:
		var fields map[string]string
		if field, reason, ok := domain.InvalidField(err); ok {
			fields = map[string]string{field: reason}
		}
		httpx.Fail(w, status, domain.ErrInvalidInput.Error(), fields)
		return
	case http.StatusConflict:
		w.Header().Set("Retry-After", RetryAfterSeconds)
	}
	httpx.JSONError(w, status, message(err, status))
}

// Status returns the HTTP status for err.
func Status(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized // 401
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict // 409
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge // 413
	default:
		return http.StatusInternalServerError // 500
	}
}

// message returns the client-facing text: the sentinel's own message, never
// the wrapped chain.
func message(err error, status int) string {
	switch status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized.Error()
	case http.StatusNotFound:
		return domain.ErrItemNotFound.Error()
	case http.StatusConflict:
		return domain.ErrBusy.Error()
	case http.StatusRequestEntityTooLarge:
		return "request body too large"
	default:
		return "internal server error"
	}
}
