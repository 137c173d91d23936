package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/logger"
)

const readyTimeout = 2 * time.Second

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports 503 while the record store cannot be reached.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if d.Store != nil {
			if err := d.Store.Ping(ctx); err != nil {
				d.Logger.Warn("store not ready", logger.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: "store unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
