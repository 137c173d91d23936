package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/readlog/internal/config"
	"github.com/MrSnakeDoc/readlog/internal/httpserver"
	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/logger"
	"github.com/MrSnakeDoc/readlog/internal/service"
	"github.com/MrSnakeDoc/readlog/internal/sources/seed"
	"github.com/MrSnakeDoc/readlog/internal/version"
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	backend *Backend
	server  *httpserver.Server
}

// New connects the store, applies the seed file and builds the HTTP server.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	backend, err := OpenBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("store initialized", logger.String("backend", backend.Name()))

	records := service.NewRecordService(backend.Store, log)

	if cfg.SeedFile != "" {
		if err := Seed(ctx, records, cfg.SeedFile, log); err != nil {
			backend.Close(log)
			return nil, err
		}
	}

	d := deps.Deps{
		Logger:             log,
		StartTime:          time.Now(),
		Build:              version.Current(),
		Records:            records,
		Store:              backend.Store,
		Backend:            backend.Name(),
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		ImportBurst:        cfg.ImportBurst,
		ImportRefillPerMin: cfg.ImportRefillPerMin,
	}

	return &App{
		cfg:     cfg,
		logger:  log,
		backend: backend,
		server:  httpserver.New(cfg, d),
	}, nil
}

// Seed loads a YAML library into an empty store. A populated store is left alone.
func Seed(ctx context.Context, records *service.RecordService, path string, log logger.Logger) error {
	lib, err := seed.NewLoader(path).Load()
	if err != nil {
		return err
	}

	entries, skipped := seed.MapRecords(lib)
	if skipped > 0 {
		log.Warn("seed entries without title ignored", logger.Int("count", skipped))
	}

	n, err := records.Seed(ctx, entries)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info("store seeded", logger.String("file", path), logger.Int("records", n))
	}
	return nil
}

// Run serves HTTP until SIGINT/SIGTERM, then shuts down within ShutdownTimeout.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting readlog %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.backend.Close(a.logger)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ readlog stopped cleanly")
	return nil
}
