package utils

import (
	"io"

	"github.com/MrSnakeDoc/readlog/internal/logger"
)

// CloseLogged closes c and reports a failure at warn level.
// Meant for defer statements where the error cannot be returned.
func CloseLogged(c io.Closer, what string, log logger.Logger) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", what), logger.Error(err))
	}
}
