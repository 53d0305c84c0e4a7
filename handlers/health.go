// ABOUTME: Health endpoint for load balancers and operators
// ABOUTME: Reports backend circuit breaker state and cache reachability

package handlers

import (
	"context"
	"net/http"
	"time"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports "ok", or "degraded" when the breaker is open or the shared
// cache is unreachable. It always answers 200 because the pages still render
// error states in both cases.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status": "ok",
		"backend": map[string]string{
			"url":     h.api.BaseURL(),
			"breaker": h.api.BreakerState(),
		},
		"cache":   "memory",
		"uploads": h.images != nil,
	}

	if h.api.BreakerState() == "open" {
		resp["status"] = "degraded"
	}

	if p, ok := h.cache.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			resp["cache"] = "redis: unreachable"
			resp["status"] = "degraded"
		} else {
			resp["cache"] = "redis"
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}
