package app

import (
	"context"
	"fmt"
	"io"

	"github.com/MrSnakeDoc/readlog/internal/config"
	"github.com/MrSnakeDoc/readlog/internal/logger"
	"github.com/MrSnakeDoc/readlog/internal/redis"
	"github.com/MrSnakeDoc/readlog/internal/store"
	"github.com/MrSnakeDoc/readlog/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/readlog/internal/store/redis"
	"github.com/MrSnakeDoc/readlog/internal/store/relational"
	"github.com/MrSnakeDoc/readlog/internal/utils"
)

// Backend is an opened record store and the connection behind it.
type Backend struct {
	Store store.RecordStore
	name  string
	conn  io.Closer // nil for the memory store
}

// OpenBackend connects the store selected by cfg.Store.
// Redis is retried until RedisConnectTimeout, Postgres fails fast.
func OpenBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (*Backend, error) {
	switch cfg.Store {
	case config.StoreRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Dial(ctx, redis.Options{
			Addr:           cfg.RedisAddr,
			Username:       cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return &Backend{Store: redisstore.NewStore(client), name: "redis", conn: client}, nil

	case config.StorePostgres:
		log.Info("Connecting to Postgres")
		st, err := relational.Open(cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &Backend{Store: st, name: "postgres", conn: st}, nil

	case config.StoreMemory:
		log.Warn("using the in-memory store, records are lost on exit")
		return &Backend{Store: memory.NewStore(), name: "memory"}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
}

// Name is the configured backend, for logs.
func (b *Backend) Name() string { return b.name }

// Close releases the connection, logging any failure.
func (b *Backend) Close(log logger.Logger) {
	if b.conn == nil {
		return
	}
	utils.CloseLogged(b.conn, b.name, log)
}
