package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/testutil"
	"github.com/alexanderramin/agendacycle/internal/vocabulary"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store *testutil.CountingStore
	fx    *testutil.Fixture
	repos Repos
	cfg   Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := &testutil.CountingStore{Store: testutil.NewTestStore(t)}
	return &harness{
		store: store,
		fx:    testutil.NewFixture(t, store),
		repos: NewGraphRepos(store),
		cfg:   Config{GraphPartition: testutil.TestPartition, BatchSize: DefaultBatchSize},
	}
}

func (h *harness) lifecycle(opts ...LifecycleOption) *Lifecycle {
	clock := h.fx.Now.Add(time.Hour)
	opts = append([]LifecycleOption{WithClock(func() time.Time { return clock })}, opts...)
	return NewLifecycle(h.store, h.cfg, opts...)
}

func (h *harness) items(t *testing.T, agendaIRI string) []*domain.Item {
	t.Helper()
	items, err := h.repos.Items.ListByAgenda(context.Background(), agendaIRI)
	require.NoError(t, err)
	domain.SortItems(items)
	return items
}

func (h *harness) agendas(t *testing.T, meetingIRI string) []*domain.Agenda {
	t.Helper()
	agendas, err := h.repos.Agendas.ListByMeeting(context.Background(), meetingIRI)
	require.NoError(t, err)
	return agendas
}

// content renders an item's outgoing facts, minus the given predicates, as
// sorted "predicate object" strings.
func (h *harness) content(t *testing.T, iri string, except ...string) []string {
	t.Helper()
	facts, err := h.store.Read(context.Background(), graph.Outgoing(iri, except...))
	require.NoError(t, err)
	out := make([]string, 0, len(facts))
	for _, f := range facts {
		out = append(out, f.Predicate+" "+f.Object.Value)
	}
	sort.Strings(out)
	return out
}

func numbers(items []*domain.Item, cat domain.Category) []int {
	var out []int
	for _, it := range items {
		if it.Category == cat {
			out = append(out, it.Number)
		}
	}
	return out
}

var identityPredicates = []string{vocabulary.UUID, vocabulary.WasRevisionOf, vocabulary.ItemCreated}
