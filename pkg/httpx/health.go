package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (Database, RedisClient, EventBus all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheck is one probed dependency. A failing critical check turns the
// response into 503; a failing optional one only marks it degraded.
type HealthCheck struct {
	Name     string
	Checker  HealthChecker
	Critical bool
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler probes every check concurrently under a shared 2s deadline.
// A nil Checker is reported as "disabled".
func HealthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		results := make([]error, len(checks))
		var wg sync.WaitGroup
		for i, c := range checks {
			if c.Checker == nil {
				continue
			}
			wg.Add(1)
			go func(i int, c HealthChecker) {
				defer wg.Done()
				results[i] = c.Ping(ctx)
			}(i, c.Checker)
		}
		wg.Wait()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for i, c := range checks {
			switch {
			case c.Checker == nil:
				resp.Checks[c.Name] = "disabled"
			case results[i] != nil:
				resp.Checks[c.Name] = "unreachable"
				resp.Status = "degraded"
				if c.Critical {
					status = http.StatusServiceUnavailable
				}
			default:
				resp.Checks[c.Name] = "ok"
			}
		}
		JSON(w, status, resp)
	}
}
