package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/logger"
	"github.com/MrSnakeDoc/readlog/internal/utils"
)

// DeleteAll wipes every record.
func DeleteAll(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Records.DeleteAll(r.Context()); err != nil {
			fail(w, r, d, err, "delete all records")
			return
		}
		d.Logger.Warn("delete-all requested",
			logger.String("remote_ip", utils.ClientIP(r, d.TrustProxy)))
		writeJSON(w, http.StatusOK, messageResponse{Message: "all records deleted"})
	}
}
