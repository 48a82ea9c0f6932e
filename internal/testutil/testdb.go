package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/agendacycle/internal/db"
	"github.com/alexanderramin/agendacycle/internal/graph"
)

// TestPartition is the named graph test stores write to.
const TestPartition = "http://mu.semte.ch/graphs/organizations/kanselarij"

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// NewTestStore returns a fact store over a fresh in-memory database.
func NewTestStore(t *testing.T, opts ...graph.StoreOption) *graph.SQLiteStore {
	t.Helper()
	return graph.NewSQLiteStore(NewTestDB(t), TestPartition, opts...)
}
