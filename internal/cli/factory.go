// Package cli wires configuration into engines, session managers and runners for the
// colloquy commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/config"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/adapters/file"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/adapters/postgres"
	"github.com/aretw0/colloquy/pkg/adapters/redis"
	"github.com/aretw0/colloquy/pkg/adapters/sqlite"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/persistence/middleware"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/runner"
	"github.com/aretw0/colloquy/pkg/session"
)

// CloseFunc releases the resources opened by a factory.
type CloseFunc func() error

func noopClose() error { return nil }

// NewEngine builds an engine over the Loam repository at cfg.FlowsDir, or over the
// YAML bundle at cfg.FlowBundle when one is configured.
// Conditions are decided by refs; a nil table means only literal conditions pass.
func NewEngine(cfg config.Config, logger *slog.Logger, hooks domain.LifecycleHooks, refs map[string]bool) (*colloquy.Engine, error) {
	opts := []colloquy.Option{
		colloquy.WithLogger(logger),
		colloquy.WithLifecycleHooks(hooks),
		colloquy.WithNDU(cfg.NDUEnabled),
		colloquy.WithDefaultFlow(cfg.DefaultFlow),
	}
	if refs != nil {
		opts = append(opts, colloquy.WithConditionEvaluator(colloquy.RefTable(refs)))
	}
	if cfg.FlowBundle != "" {
		loader, err := memory.NewLoaderFromFile(cfg.FlowBundle)
		if err != nil {
			return nil, err
		}
		opts = append(opts, colloquy.WithLoader(loader))
	}

	engine, err := colloquy.New(cfg.FlowsDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// OpenStore opens the session store named by backend.
func OpenStore(ctx context.Context, backend string, cfg config.StoreConfig) (ports.SessionStore, CloseFunc, error) {
	switch backend {
	case config.BackendMemory:
		return memory.NewStore(), noopClose, nil
	case config.BackendFile:
		return file.New(cfg.Path), noopClose, nil
	case config.BackendRedis:
		store := redis.New(cfg.RedisAddr, "", 0,
			redis.WithPrefix(cfg.RedisPrefix),
			redis.WithTTL(cfg.SessionTTL),
		)
		return store, store.Close, nil
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.BackendPostgres:
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { store.Close(); return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", backend)
}

// NewManager builds the session manager described by cfg: the primary store, an
// optional durable tier and, for the redis backend, a distributed lock shared by replicas.
func NewManager(ctx context.Context, cfg config.Config, logger *slog.Logger) (*session.Manager, CloseFunc, error) {
	primary, closePrimary, err := OpenStore(ctx, cfg.Store.Backend, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	closers := []CloseFunc{closePrimary}

	sealing, err := sealingMiddleware(cfg.Store)
	if err != nil {
		_ = closePrimary()
		return nil, nil, err
	}
	var locker ports.DistributedLocker
	if rs, ok := primary.(*redis.Store); ok {
		locker = redis.NewLocker(rs.Client(), cfg.Store.RedisPrefix)
	}
	if cfg.Store.Backend != config.BackendMemory {
		primary = middleware.Wrap(primary, sealing...)
	}

	opts := []session.Option{
		session.WithLogger(logging.WithComponent(logger, "session")),
		session.WithLockTTL(cfg.Lock.TTL),
	}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}

	if cfg.Store.Durable != "" {
		durableCfg := cfg.Store
		durableCfg.Path = cfg.Store.DurablePath
		durable, closeDurable, err := OpenStore(ctx, cfg.Store.Durable, durableCfg)
		if err != nil {
			_ = closePrimary()
			return nil, nil, fmt.Errorf("open durable %s store: %w", cfg.Store.Durable, err)
		}
		closers = append(closers, closeDurable)

		mws := sealing
		if len(cfg.Store.RedactSlots) > 0 {
			pii, err := middleware.NewPIIMiddleware(cfg.Store.RedactSlots)
			if err != nil {
				_ = closeDurable()
				_ = closePrimary()
				return nil, nil, fmt.Errorf("store.redact_slots: %w", err)
			}
			mws = append([]middleware.Middleware{pii}, sealing...)
		}
		opts = append(opts, session.WithDurableStore(middleware.Wrap(durable, mws...)))
	}

	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	return session.NewManager(primary, opts...), closeAll, nil
}

// sealingMiddleware returns the encryption middleware when a key is configured.
func sealingMiddleware(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	if cfg.EncryptionKey == "" {
		return nil, nil
	}
	active, err := config.DecodeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range cfg.FallbackKeys {
		key, err := config.DecodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("store.fallback_keys: %w", err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return []middleware.Middleware{mw}, nil
}

// NewRunner builds the engine and the session manager and joins them in a runner.
func NewRunner(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks domain.LifecycleHooks, refs map[string]bool) (*runner.Runner, CloseFunc, error) {
	engine, err := NewEngine(cfg, logger, hooks, refs)
	if err != nil {
		return nil, nil, err
	}
	manager, closeFn, err := NewManager(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return runner.New(engine,
		runner.WithManager(manager),
		runner.WithLogger(logging.WithComponent(logger, "runner")),
	), closeFn, nil
}
