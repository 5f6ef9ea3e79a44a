package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/stoptime/internal/config"
	"github.com/aretw0/stoptime/pkg/adapters/file"
	"github.com/aretw0/stoptime/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/stoptime/pkg/adapters/redis"
	"github.com/aretw0/stoptime/pkg/adapters/sqlite"
	"github.com/aretw0/stoptime/pkg/persistence/middleware"
	"github.com/aretw0/stoptime/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// Backend bundles the configured store, its matching locker and a close function.
type Backend struct {
	Store  ports.CheckpointStore
	Locker ports.Locker
	Name   string
	closer func() error
}

// Close releases connections held by the backend.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

// OpenBackend builds the checkpoint store selected by cfg, wrapped with logging and,
// when reg is not nil, metrics middleware.
func OpenBackend(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Backend, error) {
	b := &Backend{Name: cfg.Store}
	var raw ports.CheckpointStore

	switch cfg.Store {
	case config.StoreMemory:
		raw = memory.NewStore()
		b.Locker = memory.NewLocker()
	case config.StoreFile:
		raw = file.New(cfg.Dir)
		b.Locker = memory.NewLocker()
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		raw, b.closer = s, s.Close
		b.Locker = memory.NewLocker()
	case config.StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		raw = redisAdapter.NewFromClient(client,
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
			redisAdapter.WithTTL(cfg.Redis.TTL),
		)
		b.Locker = redisAdapter.NewLocker(client, cfg.Redis.Prefix)
		b.closer = client.Close
	default:
		return nil, errors.New("unknown store " + cfg.Store)
	}

	mws := []middleware.Middleware{middleware.NewLoggingMiddleware(logger)}
	if reg != nil {
		mws = append(mws, middleware.NewMetricsMiddleware(middleware.NewStoreMetrics(reg)))
	}
	b.Store = middleware.Chain(raw, mws...)

	logger.Debug("Checkpoint store ready", "store", cfg.Store)
	return b, nil
}
