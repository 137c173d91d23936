package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/readlog/internal/csvcodec"
	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/logger"
	"github.com/MrSnakeDoc/readlog/internal/service"
	"github.com/MrSnakeDoc/readlog/internal/store"
)

type messageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Error: msg})
}

// fail maps service and store errors to a status code. Anything unexpected
// is logged and reported as 500 with a generic message.
func fail(w http.ResponseWriter, r *http.Request, d deps.Deps, err error, action string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, service.ErrInvalidRecord),
		errors.Is(err, service.ErrNoValidRecords),
		errors.Is(err, service.ErrInvalidPayload),
		errors.Is(err, csvcodec.ErrMalformedCSV):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
	default:
		d.Logger.Error(action+" failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, action+" failed")
	}
}
