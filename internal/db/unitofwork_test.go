package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/agendacycle/internal/db"
	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

// countFacts reads the triple count for a graph through a read-only unit.
func countFacts(t *testing.T, uow *db.SQLiteUnitOfWork, graph string) int {
	t.Helper()
	var n int
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM triples WHERE graph = ?`, graph).Scan(&n)
	})
	require.NoError(t, err)
	return n
}

func insertFact(ctx context.Context, tx db.DBTX, graph, s string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO triples (graph, subject, predicate, object, kind) VALUES (?, ?, 'p', 'o', 'literal')`,
		graph, s)
	return err
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := openTestDB(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertFact(ctx, tx, "g", "s1")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countFacts(t, uow, "g"), "fact should exist after commit")
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := openTestDB(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertFact(ctx, tx, "g", "s2"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")
	assert.Equal(t, 0, countFacts(t, uow, "g"), "fact should not exist after rollback")
}

func TestWithinTx_BeginFailureIsStoreFailure(t *testing.T) {
	uow := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.False(t, called)
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestDB(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertFact(ctx, tx, "g", "s3")
			panic("boom")
		})
	})
	assert.Equal(t, 0, countFacts(t, uow, "g"), "fact should not exist after panic rollback")
}

func TestMigrate_Idempotent(t *testing.T) {
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, db.Migrate(database))
	require.NoError(t, db.Migrate(database))
}

func TestTriples_SetSemantics(t *testing.T) {
	uow := openTestDB(t)
	ctx := context.Background()

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := insertFact(ctx, tx, "g", "s"); err != nil {
			return err
		}
		return insertFact(ctx, tx, "g", "s")
	})
	require.Error(t, err, "duplicate fact must violate the primary key")
}
