package graph

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/agendacycle/internal/db"
	"github.com/alexanderramin/agendacycle/internal/domain"
)

// MutationObserver is told how many facts each applied mutation changed.
type MutationObserver interface {
	ObserveMutation(deleted, inserted int)
}

// SQLiteStore implements Store on the triples table, scoped to one named
// partition. Each Mutate runs in its own transaction.
type SQLiteStore struct {
	db        db.DBTX
	uow       db.UnitOfWork
	graph     string
	publisher Publisher
	observer  MutationObserver
	logger    *slog.Logger
}

type StoreOption func(*SQLiteStore)

// WithPublisher forwards every applied mutation to p after commit.
func WithPublisher(p Publisher) StoreOption {
	return func(s *SQLiteStore) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithMutationObserver(o MutationObserver) StoreOption {
	return func(s *SQLiteStore) { s.observer = o }
}

func WithLogger(l *slog.Logger) StoreOption {
	return func(s *SQLiteStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSQLiteStore creates a store over database, reading and writing only
// facts in the given partition.
func NewSQLiteStore(database *sql.DB, partition string, opts ...StoreOption) *SQLiteStore {
	return newSQLiteStore(database, db.NewSQLiteUnitOfWork(database), partition, opts...)
}

// NewSQLiteStoreWithUoW lets callers supply the transaction boundary, which
// tests use to inject write failures.
func NewSQLiteStoreWithUoW(database *sql.DB, uow db.UnitOfWork, partition string, opts ...StoreOption) *SQLiteStore {
	return newSQLiteStore(database, uow, partition, opts...)
}

func newSQLiteStore(conn db.DBTX, uow db.UnitOfWork, partition string, opts ...StoreOption) *SQLiteStore {
	s := &SQLiteStore{
		db:        conn,
		uow:       uow,
		graph:     partition,
		publisher: NoopPublisher{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Partition is the named graph this store is scoped to.
func (s *SQLiteStore) Partition() string { return s.graph }

func (s *SQLiteStore) Read(ctx context.Context, p Pattern) ([]Triple, error) {
	triples, err := s.selectTriples(ctx, s.db, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	return triples, nil
}

func (s *SQLiteStore) Mutate(ctx context.Context, m Mutation) (Result, error) {
	var res Result
	var deleted, inserted []Triple

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		for _, w := range m.Where {
			ok, err := s.exists(ctx, tx, w)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		res.Applied = true

		for _, p := range m.Delete {
			matched, err := s.selectTriples(ctx, tx, p)
			if err != nil {
				return err
			}
			if len(matched) == 0 {
				continue
			}
			clause, args := s.whereClause(p)
			r, err := tx.ExecContext(ctx, `DELETE FROM triples WHERE `+clause, args...)
			if err != nil {
				return fmt.Errorf("deleting facts: %w", err)
			}
			n, err := r.RowsAffected()
			if err != nil {
				return fmt.Errorf("counting deleted facts: %w", err)
			}
			res.Deleted += int(n)
			deleted = append(deleted, matched...)
		}

		for _, t := range m.Insert {
			r, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO triples (graph, subject, predicate, object, kind, datatype) VALUES (?, ?, ?, ?, ?, ?)`,
				s.graph, t.Subject, t.Predicate, t.Object.Value, string(t.Object.Kind), t.Object.Datatype)
			if err != nil {
				return fmt.Errorf("inserting fact: %w", err)
			}
			n, err := r.RowsAffected()
			if err != nil {
				return fmt.Errorf("counting inserted facts: %w", err)
			}
			if n > 0 {
				res.Inserted += int(n)
				inserted = append(inserted, t)
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}

	if res.Writes() > 0 {
		if s.observer != nil {
			s.observer.ObserveMutation(res.Deleted, res.Inserted)
		}
		delta := Delta{Graph: s.graph, Inserts: inserted, Deletes: deleted, At: time.Now().UTC()}
		if err := s.publisher.Publish(ctx, delta); err != nil {
			s.logger.WarnContext(ctx, "publishing delta failed",
				"graph", s.graph, "deleted", res.Deleted, "inserted", res.Inserted, "error", err)
		}
	}
	return res, nil
}

func (s *SQLiteStore) exists(ctx context.Context, conn db.DBTX, p Pattern) (bool, error) {
	clause, args := s.whereClause(p)
	var one int
	err := conn.QueryRowContext(ctx, `SELECT 1 FROM triples WHERE `+clause+` LIMIT 1`, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking pattern: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) selectTriples(ctx context.Context, conn db.DBTX, p Pattern) ([]Triple, error) {
	clause, args := s.whereClause(p)
	rows, err := conn.QueryContext(ctx,
		`SELECT subject, predicate, object, kind, datatype FROM triples WHERE `+clause+
			` ORDER BY subject, predicate, object`, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting facts: %w", err)
	}
	defer rows.Close()

	var out []Triple
	for rows.Next() {
		var t Triple
		var kind string
		if err := rows.Scan(&t.Subject, &t.Predicate, &t.Object.Value, &kind, &t.Object.Datatype); err != nil {
			return nil, fmt.Errorf("scanning fact: %w", err)
		}
		t.Object.Kind = TermKind(kind)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating facts: %w", err)
	}
	return out, nil
}

// whereClause renders a pattern as a parameterized filter on this partition.
func (s *SQLiteStore) whereClause(p Pattern) (string, []any) {
	var b strings.Builder
	args := []any{s.graph}
	b.WriteString("graph = ?")
	if p.Subject != "" {
		b.WriteString(" AND subject = ?")
		args = append(args, p.Subject)
	}
	if p.Predicate != "" {
		b.WriteString(" AND predicate = ?")
		args = append(args, p.Predicate)
	}
	if p.Object != nil {
		b.WriteString(" AND object = ? AND kind = ? AND datatype = ?")
		args = append(args, p.Object.Value, string(p.Object.Kind), p.Object.Datatype)
	}
	if len(p.ExceptPredicates) > 0 {
		b.WriteString(" AND predicate NOT IN (")
		for i, pred := range p.ExceptPredicates {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, pred)
		}
		b.WriteString(")")
	}
	return b.String(), args
}
