package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/version"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	Store         string  `json:"store,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	version.Info
}

// Healthz is the liveness probe: build info, uptime and the configured
// backend. It never touches the store; /readyz does.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Store:         d.Backend,
			UptimeSeconds: time.Since(d.StartTime).Round(time.Millisecond).Seconds(),
			Info:          d.Build,
		})
	}
}
