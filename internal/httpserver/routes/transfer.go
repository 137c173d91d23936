package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/readlog/internal/httpserver/mw"
)

func init() { Register(registerTransfer) }

func registerTransfer(r chi.Router, d deps.Deps) {
	r.Get("/records/export", handlers.ExportRecords(d))

	// one bucket per client shared by both import steps
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.ImportBurst,
		RefillPerMin: d.ImportRefillPerMin,
		TrustProxy:   d.TrustProxy,
	}))
	limited.With(mw.MaxBytes(d.MaxUploadBytes)).
		Post("/records/import/preview", handlers.PreviewImport(d))
	limited.With(mw.MaxBytes(handlers.CommitBodyLimit(d.MaxUploadBytes))).
		Post("/records/import/commit", handlers.CommitImport(d))
}
