package graph_test

import (
	"context"
	"sync"
	"testing"

	"github.com/alexanderramin/agendacycle/internal/db"
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	deltas []graph.Delta
}

func (p *recordingPublisher) Publish(_ context.Context, d graph.Delta) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deltas = append(p.deltas, d)
	return nil
}

func newStore(t *testing.T, partition string, opts ...graph.StoreOption) *graph.SQLiteStore {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return graph.NewSQLiteStore(database, partition, opts...)
}

func seed(t *testing.T, s graph.Store, triples ...graph.Triple) {
	t.Helper()
	_, err := s.Mutate(context.Background(), graph.Mutation{Insert: triples})
	require.NoError(t, err)
}

func fact(s, p string, o graph.Term) graph.Triple {
	return graph.Triple{Subject: s, Predicate: p, Object: o}
}

func TestSQLiteStore_ReadPatterns(t *testing.T) {
	s := newStore(t, "g")
	ctx := context.Background()
	seed(t, s,
		fact("a", "p", graph.IRI("b")),
		fact("a", "q", graph.String("x")),
		fact("c", "p", graph.IRI("b")),
		fact("c", "n", graph.Integer(3)),
	)

	out, err := s.Read(ctx, graph.Outgoing("a"))
	require.NoError(t, err)
	assert.Len(t, out, 2)

	out, err = s.Read(ctx, graph.Incoming("b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, graph.Subjects(out))

	out, err = s.Read(ctx, graph.Outgoing("a", "q"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "p", out[0].Predicate)

	out, err = s.Read(ctx, graph.Property("c", "n"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	n, ok := out[0].Object.Int()
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestSQLiteStore_ObjectMatchIncludesDatatype(t *testing.T) {
	s := newStore(t, "g")
	seed(t, s, fact("a", "n", graph.Integer(1)), fact("b", "n", graph.String("1")))

	typed := graph.Integer(1)
	out, err := s.Read(context.Background(), graph.Pattern{Predicate: "n", Object: &typed})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, graph.Subjects(out))
}

func TestSQLiteStore_PartitionsAreIsolated(t *testing.T) {
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	defer database.Close()

	one := graph.NewSQLiteStore(database, "one")
	two := graph.NewSQLiteStore(database, "two")
	seed(t, one, fact("a", "p", graph.String("x")))

	out, err := two.Read(context.Background(), graph.Outgoing("a"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSQLiteStore_MutateDeletesBeforeInserting(t *testing.T) {
	s := newStore(t, "g")
	ctx := context.Background()
	seed(t, s, fact("i", "pos", graph.Integer(2)))

	res, err := s.Mutate(ctx, graph.Mutation{
		Delete: []graph.Pattern{graph.Property("i", "pos")},
		Insert: []graph.Triple{fact("i", "pos", graph.Integer(1))},
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.Inserted)

	out, err := s.Read(ctx, graph.Property("i", "pos"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].Object.Value)
}

func TestSQLiteStore_WhereGuardSkipsMutation(t *testing.T) {
	s := newStore(t, "g")
	ctx := context.Background()

	res, err := s.Mutate(ctx, graph.Mutation{
		Where:  []graph.Pattern{graph.Property("missing", "p")},
		Insert: []graph.Triple{fact("a", "p", graph.String("x"))},
	})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Zero(t, res.Writes())

	out, err := s.Read(ctx, graph.Outgoing("a"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSQLiteStore_InsertExistingFactIsNoWrite(t *testing.T) {
	pub := &recordingPublisher{}
	s := newStore(t, "g", graph.WithPublisher(pub))
	seed(t, s, fact("a", "p", graph.String("x")))
	require.Len(t, pub.deltas, 1)

	res, err := s.Mutate(context.Background(), graph.Mutation{Insert: []graph.Triple{fact("a", "p", graph.String("x"))}})
	require.NoError(t, err)
	assert.Zero(t, res.Writes())
	assert.Len(t, pub.deltas, 1, "no delta for a mutation that changed nothing")
}

func TestSQLiteStore_PublishesDeletedAndInsertedFacts(t *testing.T) {
	pub := &recordingPublisher{}
	s := newStore(t, "g", graph.WithPublisher(pub))
	seed(t, s, fact("a", "p", graph.String("old")))

	_, err := s.Mutate(context.Background(), graph.Mutation{
		Delete: []graph.Pattern{graph.Outgoing("a")},
		Insert: []graph.Triple{fact("a", "p", graph.String("new"))},
	})
	require.NoError(t, err)

	require.Len(t, pub.deltas, 2)
	last := pub.deltas[1]
	assert.Equal(t, "g", last.Graph)
	require.Len(t, last.Deletes, 1)
	assert.Equal(t, "old", last.Deletes[0].Object.Value)
	require.Len(t, last.Inserts, 1)
	assert.Equal(t, "new", last.Inserts[0].Object.Value)
}

func TestNATSPublisher_NilConnectionSkips(t *testing.T) {
	p := graph.NewNATSPublisher(nil, "")
	assert.NoError(t, p.Publish(context.Background(), graph.Delta{Graph: "g"}))
}
