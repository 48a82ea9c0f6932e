// Package guard serializes lifecycle actions. Callers acquire a key, get a
// release func back, and give up with domain.ErrBusy once the wait bound
// passes.
package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"golang.org/x/sync/semaphore"
)

// Scope selects how widely actions exclude each other.
type Scope string

const (
	// ScopeMeeting lets actions on different meetings run concurrently.
	ScopeMeeting Scope = "meeting"
	// ScopeGlobal allows one action at a time process-wide.
	ScopeGlobal Scope = "global"
)

const globalKey = "*"

// Polling defaults for waiting callers.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultMaxWait      = 30 * time.Second
)

// Config bounds how a waiting caller polls.
type Config struct {
	Scope        Scope
	PollInterval time.Duration
	MaxWait      time.Duration
}

func DefaultConfig() Config {
	return Config{Scope: ScopeMeeting, PollInterval: DefaultPollInterval, MaxWait: DefaultMaxWait}
}

// Guard hands out one weighted semaphore per key.
type Guard struct {
	cfg Config

	mu   sync.Mutex
	sems map[string]*entry
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

func New(cfg Config) *Guard {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxWait < 0 {
		cfg.MaxWait = 0
	}
	if cfg.Scope == "" {
		cfg.Scope = ScopeMeeting
	}
	return &Guard{cfg: cfg, sems: make(map[string]*entry)}
}

func (g *Guard) keyFor(key string) string {
	if g.cfg.Scope == ScopeGlobal {
		return globalKey
	}
	return key
}

// Acquire blocks until key is free, polling at the configured interval. It
// fails with domain.ErrBusy after MaxWait, or when ctx ends first. In the
// latter case the error also wraps ctx's error. The returned release func is safe to call more than once.
func (g *Guard) Acquire(ctx context.Context, key string) (func(), error) {
	k := g.keyFor(key)
	e := g.ref(k)

	deadline := time.Now().Add(g.cfg.MaxWait)
	ticker := time.NewTicker(g.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if e.sem.TryAcquire(1) {
			var once sync.Once
			return func() {
				once.Do(func() {
					e.sem.Release(1)
					g.unref(k)
				})
			}, nil
		}
		if !time.Now().Before(deadline) {
			g.unref(k)
			return nil, fmt.Errorf("%w: another action on %s is still running after %s", domain.ErrBusy, key, g.cfg.MaxWait)
		}
		select {
		case <-ctx.Done():
			g.unref(k)
			return nil, fmt.Errorf("%w: gave up waiting for %s: %w", domain.ErrBusy, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Do runs fn while holding key.
func (g *Guard) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	release, err := g.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

func (g *Guard) ref(k string) *entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.sems[k]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		g.sems[k] = e
	}
	e.refs++
	return e
}

// unref drops the entry once nobody holds or waits on it.
func (g *Guard) unref(k string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.sems[k]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(g.sems, k)
	}
}

// Keys reports how many keys are currently tracked.
func (g *Guard) Keys() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sems)
}
