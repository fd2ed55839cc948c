package auth

import (
	"errors"
	"net/http"

	"github.com/havenops/stockledger/pkg/logger"
)

// Authenticate is a chi middleware that resolves the calling employee with
// provider and attaches the ID to the request context. Requests without a
// usable credential pass through unchanged; the inventory gateway decides
// which operations require an identity.
//
// After this middleware, handlers call auth.CallerFromRequest(r).
func Authenticate(provider IdentityProvider, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if provider == nil {
				next.ServeHTTP(w, r)
				return
			}

			employeeID, err := provider.EmployeeID(r)
			switch {
			case err == nil && employeeID != "":
				r = r.WithContext(WithEmployeeID(r.Context(), employeeID))
			case err == nil, errors.Is(err, ErrNoCredentials):
			default:
				log.WarnContext(r.Context(), "rejected credential",
					"error", err,
					"ip_address", ClientIP(r.Header),
				)
			}
			next.ServeHTTP(w, r)
		})
	}
}
