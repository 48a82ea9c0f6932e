package graph

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig bounds read retries. Writes are never retried.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

// RetryingStore retries failed reads with exponential backoff and passes
// mutations straight through.
type RetryingStore struct {
	Store
	cfg RetryConfig
}

func NewRetryingStore(inner Store, cfg RetryConfig) *RetryingStore {
	return &RetryingStore{Store: inner, cfg: cfg}
}

func (s *RetryingStore) Read(ctx context.Context, p Pattern) ([]Triple, error) {
	var out []Triple
	op := func() error {
		var err error
		out, err = s.Store.Read(ctx, p)
		return err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.cfg.InitialInterval
	exp.MaxInterval = s.cfg.MaxInterval
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, s.cfg.MaxRetries), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return out, nil
}
