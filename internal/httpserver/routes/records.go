package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/httpserver/handlers"
)

func init() { Register(registerRecords) }

func registerRecords(r chi.Router, d deps.Deps) {
	r.Get("/records", handlers.ListRecords(d))
	r.Post("/records", handlers.CreateRecord(d))
	r.Get("/records/{id:[0-9]+}", handlers.GetRecord(d))
	r.Put("/records/{id:[0-9]+}", handlers.UpdateRecord(d))
	r.Delete("/records/{id:[0-9]+}", handlers.DeleteRecord(d))
}
