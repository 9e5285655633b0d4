package httpx

import (
	"context"
	"net/http"
	"sort"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// healthHandler reports 200 when every check passes and 503 otherwise.
// HEAD requests get the status only.
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			return
		}
		body := map[string]any{"status": "ok"}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(results) > 0 {
			body["checks"] = results
		}
		WriteJSON(w, status, body)
	}
}
