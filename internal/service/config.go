package service

import (
	"context"
	"time"
)

// DefaultBatchSize bounds how many items one migration or renumbering
// mutation touches.
const DefaultBatchSize = 100

// Config drives the lifecycle controller.
type Config struct {
	// GraphPartition is the named graph the store writes to. It is carried
	// into logs so operators can tell deployments apart.
	GraphPartition string
	BatchSize      int
	// SettleDelay is the pause between cascade phases.
	SettleDelay time.Duration
}

func DefaultConfig() Config {
	return Config{BatchSize: DefaultBatchSize}
}

func (c Config) batchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// Settler waits for an external cache to observe recent writes.
type Settler interface {
	Settle(ctx context.Context)
}

// NoopSettler returns immediately.
type NoopSettler struct{}

func (NoopSettler) Settle(context.Context) {}

// DelaySettler sleeps for Delay or until ctx is done.
type DelaySettler struct {
	Delay time.Duration
}

func (s DelaySettler) Settle(ctx context.Context) {
	if s.Delay <= 0 {
		return
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// NewSettler returns a DelaySettler for positive delays and a no-op
// otherwise.
func NewSettler(delay time.Duration) Settler {
	if delay <= 0 {
		return NoopSettler{}
	}
	return DelaySettler{Delay: delay}
}
