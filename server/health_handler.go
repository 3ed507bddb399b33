package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler reports ok when every registered dependency check passes
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		response := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(s.healthChecks) > 0 {
			response.Checks = make(map[string]string, len(s.healthChecks))
		}
		for name, check := range s.healthChecks {
			if err := check(ctx); err != nil {
				log.Err(err).Str("check", name).Msg("health check failed")
				response.Checks[name] = err.Error()
				response.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			response.Checks[name] = "ok"
		}
		writeJSON(w, status, response)
	}
}
