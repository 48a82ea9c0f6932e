package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// One row per fact. The primary key gives set semantics per partition.
	`CREATE TABLE IF NOT EXISTS triples (
		graph     TEXT NOT NULL,
		subject   TEXT NOT NULL,
		predicate TEXT NOT NULL,
		object    TEXT NOT NULL,
		kind      TEXT NOT NULL CHECK(kind IN ('iri','literal')),
		datatype  TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (graph, subject, predicate, object, kind, datatype)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_triples_predicate_object ON triples(graph, predicate, object)`,
	`CREATE INDEX IF NOT EXISTS idx_triples_object ON triples(graph, object)`,
}
