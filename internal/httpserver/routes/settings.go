package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/readlog/internal/httpserver/mw"
)

func init() { Register(registerSettings, trustedNetworksOnly) }

func trustedNetworksOnly(d deps.Deps) func(http.Handler) http.Handler {
	return mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
}

func registerSettings(r chi.Router, d deps.Deps) {
	r.Post("/settings/delete-all", handlers.DeleteAll(d))
}
