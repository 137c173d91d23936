package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/httpserver/handlers"
)

func init() {
	Register(registerLiveness)
	Register(registerReadiness, trustedNetworksOnly)
}

func registerLiveness(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
}

func registerReadiness(r chi.Router, d deps.Deps) {
	r.Get("/readyz", handlers.Readyz(d))
}
