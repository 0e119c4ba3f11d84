package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/tracery"
	"github.com/aretw0/tracery/internal/logging"
	"github.com/aretw0/tracery/pkg/ports"
)

const (
	// DefaultTTL is how long an idle session keeps its engines.
	DefaultTTL = 30 * time.Minute
	// DefaultAnonymousTTL applies to generated session IDs until a caller reuses one.
	DefaultAnonymousTTL = time.Minute
	// DefaultMaxCount caps the expansions a single request may ask for.
	DefaultMaxCount = 1000
)

var (
	// ErrInvalidCount is returned when a request asks for fewer than one result.
	ErrInvalidCount = errors.New("count must be at least 1")
	// ErrCountTooLarge is returned when a request asks for more than the configured maximum.
	ErrCountTooLarge = errors.New("count exceeds maximum")
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// entry is the per-session state: one engine per grammar.
type entry struct {
	engines  map[string]*tracery.Engine
	lastUsed time.Time
	// anonymous is set for generated IDs and cleared once a caller sends the ID back.
	anonymous bool
}

// Request asks for Count expansions of Template against Grammar.
// An empty Session starts an anonymous session with a generated ID.
type Request struct {
	Session  string
	Grammar  string
	Template string
	Count    int
}

// Response carries the expansions and the session that produced them.
type Response struct {
	Session string
	Results []string
}

// Manager orchestrates per-session engines, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	loader ports.GrammarLoader

	mu       sync.Mutex
	locks    map[string]*lockEntry
	sessions map[string]*entry
	// generations counts Invalidate calls per grammar.
	generations map[string]uint64

	engineOpts []tracery.Option
	ttl        time.Duration
	anonTTL    time.Duration
	lockTTL    time.Duration
	maxCount   int
	now        func() time.Time

	locker ports.DistributedLocker // Optional distributed locker
	tracer trace.Tracer
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTTL sets the idle expiry. Zero or negative disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithAnonymousTTL sets the idle expiry of sessions with generated IDs.
func WithAnonymousTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.anonTTL = ttl
	}
}

// WithMaxCount caps Request.Count. Zero or negative keeps the default.
func WithMaxCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxCount = n
		}
	}
}

// WithEngineOptions are applied to every engine the Manager builds.
func WithEngineOptions(opts ...tracery.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// WithTracer overrides the tracer (default: the global otel provider).
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) {
		m.tracer = tracer
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Session Manager serving grammars from loader.
func NewManager(loader ports.GrammarLoader, opts ...Option) *Manager {
	m := &Manager{
		loader:      loader,
		locks:       make(map[string]*lockEntry),
		sessions:    make(map[string]*entry),
		generations: make(map[string]uint64),
		ttl:         DefaultTTL,
		anonTTL:     DefaultAnonymousTTL,
		lockTTL:     30 * time.Second,
		maxCount:    DefaultMaxCount,
		now:         time.Now,
		logger:      logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tracer == nil {
		m.tracer = otel.Tracer("github.com/aretw0/tracery/pkg/session")
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.locks[sessionID]
	if !exists {
		e = &lockEntry{}
		m.locks[sessionID] = e
	}
	e.refs++
	return e
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.locks[sessionID]
	if !exists {
		return
	}

	e.refs--
	if e.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	lock := m.acquire(sessionID)
	lock.mu.Lock()
	defer func() {
		lock.mu.Unlock()
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

// engine returns the session's engine for grammarName, building it on first use.
// Must be called under the session lock. An engine loaded while the grammar
// was invalidated serves this call but is not cached.
func (m *Manager) engine(ctx context.Context, sessionID, grammarName string, anonymous bool) (*tracery.Engine, error) {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	if !ok {
		e = &entry{engines: make(map[string]*tracery.Engine), anonymous: anonymous}
		m.sessions[sessionID] = e
	} else if !anonymous {
		e.anonymous = false
	}
	e.lastUsed = m.now()
	eng := e.engines[grammarName]
	gen := m.generations[grammarName]
	m.mu.Unlock()

	if eng != nil {
		return eng, nil
	}

	eng, err := tracery.Load(ctx, m.loader, grammarName, m.engineOpts...)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	cur, ok := m.sessions[sessionID]
	stale := m.generations[grammarName] != gen
	if ok && !stale {
		cur.engines[grammarName] = eng
	}
	m.mu.Unlock()

	if stale {
		m.logger.Debug("Grammar changed while loading, engine not cached", "session_id", sessionID, "grammar", grammarName)
		return eng, nil
	}

	m.logger.Debug("Engine created", "session_id", sessionID, "grammar", grammarName)
	return eng, nil
}

// Flatten expands the request's template Count times (at least once) within
// one session. Results within a call share nothing but the session's random
// source; bindings are cleared before each expansion.
func (m *Manager) Flatten(ctx context.Context, req Request) (*Response, error) {
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Count < 0 {
		return nil, ErrInvalidCount
	}
	if req.Count > m.maxCount {
		return nil, fmt.Errorf("%w: %d > %d", ErrCountTooLarge, req.Count, m.maxCount)
	}
	anonymous := req.Session == ""
	if anonymous {
		req.Session = uuid.NewString()
	}

	ctx, span := m.tracer.Start(ctx, "session.Flatten", trace.WithAttributes(
		attribute.String("tracery.session", req.Session),
		attribute.String("tracery.grammar", req.Grammar),
		attribute.Int("tracery.count", req.Count),
	))
	defer span.End()

	resp := &Response{Session: req.Session, Results: make([]string, 0, req.Count)}
	err := m.WithLock(ctx, req.Session, func(ctx context.Context) error {
		eng, err := m.engine(ctx, req.Session, req.Grammar, anonymous)
		if err != nil {
			return err
		}
		for i := 0; i < req.Count; i++ {
			out, err := eng.FlattenContext(ctx, req.Template)
			if err != nil {
				return err
			}
			resp.Results = append(resp.Results, out)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return resp, nil
}

// Delete drops a session and its engines.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.sessions, sessionID)
		m.mu.Unlock()
		return nil
	})
}

// List returns the active session IDs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Invalidate drops every cached engine for grammarName, so the next call
// reloads it. Used after a grammar is saved or changes on disk.
func (m *Manager) Invalidate(grammarName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[grammarName]++
	for _, e := range m.sessions {
		delete(e.engines, grammarName)
	}
}

// Expire removes sessions idle for longer than the TTL and returns how many were removed.
// Sessions with generated IDs that were never reused expire after the anonymous TTL.
func (m *Manager) Expire() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		// Skip sessions with a call in flight.
		if _, busy := m.locks[id]; busy {
			continue
		}
		ttl := m.ttl
		if e.anonymous && m.anonTTL > 0 && (ttl <= 0 || m.anonTTL < ttl) {
			ttl = m.anonTTL
		}
		if ttl <= 0 {
			continue
		}
		if e.lastUsed.Before(now.Add(-ttl)) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run expires idle sessions every interval and, when the loader is
// ports.Watchable, invalidates grammars as they change. It blocks until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	var changes <-chan string
	if w, ok := m.loader.(ports.Watchable); ok {
		ch, err := w.Watch(ctx)
		if err != nil {
			m.logger.Warn("Grammar watch unavailable", "err", err)
		} else {
			changes = ch
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Expire(); n > 0 {
				m.logger.Debug("Expired idle sessions", "count", n)
			}
		case name, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			m.logger.Info("Grammar changed, reloading", "grammar", name)
			m.Invalidate(name)
		}
	}
}

// Loader returns the grammar source.
func (m *Manager) Loader() ports.GrammarLoader {
	return m.loader
}
