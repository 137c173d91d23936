package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/readlog/internal/logger"
	"github.com/MrSnakeDoc/readlog/internal/service"
	"github.com/MrSnakeDoc/readlog/internal/version"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Build     version.Info

	Records *service.RecordService // every record use case
	Store   Pinger                 // checked by /readyz
	Backend string                 // configured store name, reported by /healthz

	AllowedHosts []string // Host headers allowed to access the server
	AllowedCIDRS []string // networks allowed to reach /settings and /readyz
	TrustProxy   bool     // true if running behind a trusted reverse proxy

	MaxUploadBytes     int64 // CSV upload cap
	ImportBurst        int   // import requests allowed in a burst, per client
	ImportRefillPerMin int   // import requests regained per minute
}
