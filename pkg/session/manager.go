package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// StartFunc creates the initial state of a new session.
type StartFunc func(ctx context.Context, sessionID string) (*domain.SessionState, error)

// UpdateFunc receives the current state and returns the state to save.
// Returning a nil state skips the save.
type UpdateFunc func(ctx context.Context, state *domain.SessionState) (*domain.SessionState, ports.SaveOptions, error)

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
//
// With a durable store configured, saves land in the primary store (typically a
// cache) and are written through to the durable store only when forced or on Flush.
type Manager struct {
	store   ports.SessionStore
	durable ports.SessionStore

	mu    sync.Mutex            // Global lock for the maps below
	locks map[string]*lockEntry // Active locks
	dirty map[string]struct{}   // Sessions saved to store but not yet to durable

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithDurableStore adds a second, durable tier behind the primary store.
func WithDurableStore(store ports.SessionStore) Option {
	return func(m *Manager) {
		m.durable = store
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		dirty:   make(map[string]struct{}),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves an existing session.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	var state *domain.SessionState
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.load(ctx, sessionID)
		return err
	})
	return state, err
}

// LoadOrStart tries to load a session. If not found, it initializes a new one with start.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string, start StartFunc) (*domain.SessionState, error) {
	var state *domain.SessionState
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.loadOrStart(ctx, sessionID, start)
		return err
	})
	return state, err
}

// Save persists the session state.
func (m *Manager) Save(ctx context.Context, sessionID string, state *domain.SessionState, opts ports.SaveOptions) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.save(ctx, sessionID, state, opts)
	})
}

// Update runs a load-modify-save cycle while holding the session lock.
func (m *Manager) Update(ctx context.Context, sessionID string, start StartFunc, fn UpdateFunc) (*domain.SessionState, error) {
	var out *domain.SessionState
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := m.loadOrStart(ctx, sessionID, start)
		if err != nil {
			return err
		}
		next, opts, err := fn(ctx, current)
		if err != nil {
			return err
		}
		if next == nil {
			out = current
			return nil
		}
		if err := m.save(ctx, sessionID, next, opts); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

// Delete removes the session from every tier.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return err
		}
		m.clearDirty(sessionID)
		if m.durable != nil {
			return m.durable.Delete(ctx, sessionID)
		}
		return nil
	})
}

// List returns the known session IDs across tiers, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if m.durable == nil {
		return ids, nil
	}
	more, err := m.durable.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(ids)+len(more))
	out := make([]string, 0, len(ids)+len(more))
	for _, id := range append(ids, more...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Flush writes every dirty session to the durable store.
// It returns the number of sessions written.
func (m *Manager) Flush(ctx context.Context) (int, error) {
	if m.durable == nil {
		return 0, nil
	}

	m.mu.Lock()
	ids := make([]string, 0, len(m.dirty))
	for id := range m.dirty {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sort.Strings(ids)

	var errs []error
	written := 0
	for _, id := range ids {
		err := m.WithLock(ctx, id, func(ctx context.Context) error {
			state, err := m.store.Load(ctx, id)
			if errors.Is(err, domain.ErrSessionNotFound) {
				m.clearDirty(id)
				return nil
			}
			if err != nil {
				return err
			}
			if err := m.durable.Save(ctx, id, state); err != nil {
				return err
			}
			m.clearDirty(id)
			written++
			return nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", id, err))
		}
	}
	return written, errors.Join(errs...)
}

// RunFlusher flushes on every tick until ctx is done, then flushes one last time.
func (m *Manager) RunFlusher(ctx context.Context, interval time.Duration) {
	if m.durable == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if _, err := m.Flush(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("final session flush failed", "err", err)
			}
			return
		case <-ticker.C:
			if n, err := m.Flush(ctx); err != nil {
				m.logger.Warn("session flush failed", "err", err)
			} else if n > 0 {
				m.logger.Debug("sessions flushed", "count", n)
			}
		}
	}
}

// Pending returns the number of sessions waiting for a flush.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dirty)
}

// Store returns the primary session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	state, err := m.store.Load(ctx, sessionID)
	if err == nil || !errors.Is(err, domain.ErrSessionNotFound) || m.durable == nil {
		return state, err
	}

	state, err = m.durable.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, sessionID, state); err != nil {
		m.logger.Warn("failed to warm session cache", "session_id", sessionID, "err", err)
	}
	return state, nil
}

func (m *Manager) loadOrStart(ctx context.Context, sessionID string, start StartFunc) (*domain.SessionState, error) {
	state, err := m.load(ctx, sessionID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}
	if start == nil {
		return nil, err
	}

	state, err = start(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	// Persist immediately to reserve the ID
	if err := m.save(ctx, sessionID, state, ports.SaveOptions{}); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	return state, nil
}

func (m *Manager) save(ctx context.Context, sessionID string, state *domain.SessionState, opts ports.SaveOptions) error {
	if err := m.store.Save(ctx, sessionID, state); err != nil {
		return err
	}
	if m.durable == nil {
		return nil
	}
	if !opts.ForcePersist {
		m.mu.Lock()
		m.dirty[sessionID] = struct{}{}
		m.mu.Unlock()
		return nil
	}
	if err := m.durable.Save(ctx, sessionID, state); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	m.clearDirty(sessionID)
	return nil
}

func (m *Manager) clearDirty(sessionID string) {
	m.mu.Lock()
	delete(m.dirty, sessionID)
	m.mu.Unlock()
}
