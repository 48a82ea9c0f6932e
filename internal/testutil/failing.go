package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/agendacycle/internal/db"
	"github.com/alexanderramin/agendacycle/internal/graph"
)

// FailOnNthExecUoW is a test UoW that injects an error on the Nth ExecContext
// call within a transaction. This enables rollback tests that fail a single
// mutation halfway through its deletes and inserts.
//
// ExecContext calls are counted starting at 1 across all transactions.
// QueryContext and QueryRowContext are not counted.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error

	count atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failOnNthExec{DBTX: tx, uow: u}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failOnNthExec struct {
	db.DBTX
	uow *FailOnNthExecUoW
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	n := f.uow.count.Add(1)
	if n == f.uow.FailOn {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// FailOnNthMutateStore wraps a store and fails the Nth Mutate call,
// counting from 1. Reads and the other mutations pass through.
type FailOnNthMutateStore struct {
	graph.Store
	FailOn int32
	Err    error

	count atomic.Int32
}

func (s *FailOnNthMutateStore) Mutate(ctx context.Context, m graph.Mutation) (graph.Result, error) {
	n := s.count.Add(1)
	if n == s.FailOn {
		return graph.Result{}, s.Err
	}
	return s.Store.Mutate(ctx, m)
}

// Mutations reports how many Mutate calls the store has seen.
func (s *FailOnNthMutateStore) Mutations() int { return int(s.count.Load()) }

// FailingReadStore fails the first Failures reads, then passes through.
type FailingReadStore struct {
	graph.Store
	Failures int32
	Err      error

	reads atomic.Int32
}

func (s *FailingReadStore) Read(ctx context.Context, p graph.Pattern) ([]graph.Triple, error) {
	if s.reads.Add(1) <= s.Failures {
		return nil, s.Err
	}
	return s.Store.Read(ctx, p)
}

func (s *FailingReadStore) Reads() int { return int(s.reads.Load()) }

// CountingStore counts mutations that changed at least one fact.
type CountingStore struct {
	graph.Store
	writes atomic.Int32
}

func (s *CountingStore) Mutate(ctx context.Context, m graph.Mutation) (graph.Result, error) {
	res, err := s.Store.Mutate(ctx, m)
	if err == nil && res.Writes() > 0 {
		s.writes.Add(1)
	}
	return res, err
}

func (s *CountingStore) Writes() int { return int(s.writes.Load()) }

func (s *CountingStore) Reset() { s.writes.Store(0) }
