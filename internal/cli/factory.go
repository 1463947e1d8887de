// Package cli holds the operator workflows behind the cadence commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/internal/adapters/file"
	"github.com/aretw0/cadence/internal/config"
	"github.com/aretw0/cadence/pkg/adapters/memory"
	"github.com/aretw0/cadence/pkg/adapters/redis"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/observability"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/trigger"
)

// OpenStore returns the parameter store selected by cfg.Store.
// The returned close func releases backend connections.
func OpenStore(ctx context.Context, cfg config.Config) (ports.ParamStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case config.StoreMemory:
		return memory.NewStore(), noop, nil
	case config.StoreFile, "":
		return file.New(cfg.Store.Path), noop, nil
	case config.StoreRedis:
		opts := []redis.Option{redis.WithTTL(cfg.Store.TTL)}
		if cfg.Store.RedisPrefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Store.RedisPrefix))
		}
		store := redis.New(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.Store.RedisAddr, err)
		}
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// OpenEmitter dials the trigger endpoint from cfg and starts an emitter on it.
// observer may be nil.
func OpenEmitter(cfg config.Config, logger *slog.Logger, observer func(domain.Outcome)) (*trigger.Emitter, error) {
	transport, err := trigger.DialUDP(cfg.Trigger.Host, cfg.Trigger.Port)
	if err != nil {
		return nil, err
	}

	opts := []trigger.Option{
		trigger.WithCodebook(cfg.Codebook()),
		trigger.WithLogger(logger),
		trigger.WithQueueSize(cfg.Trigger.QueueSize),
		trigger.WithSendTimeout(cfg.Trigger.SendTimeout),
	}
	if observer != nil {
		opts = append(opts, trigger.WithObserver(observer))
	}
	return trigger.NewEmitter(transport, opts...), nil
}

// NewStation builds a station from cfg with log hooks and, when metrics is
// not nil, the prometheus hooks.
func NewStation(cfg config.Config, emitter ports.Emitter, logger *slog.Logger, metrics *observability.Metrics) *cadence.Station {
	opts := []cadence.Option{
		cadence.WithLogger(logger),
		cadence.WithSessionOptions(cfg.SessionOptions()...),
		cadence.WithLifecycleHooks(observability.LogHooks(logger)),
	}
	if metrics != nil {
		opts = append(opts, cadence.WithLifecycleHooks(metrics.Hooks()))
	}
	return cadence.New(emitter, opts...)
}
