package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/vocabulary"
)

// GraphItemRepo implements ItemRepo on the fact store.
type GraphItemRepo struct {
	store graph.Store
}

func NewGraphItemRepo(s graph.Store) *GraphItemRepo {
	return &GraphItemRepo{store: s}
}

func (r *GraphItemRepo) Get(ctx context.Context, iri string) (*domain.Item, error) {
	triples, err := r.store.Read(ctx, graph.Outgoing(iri))
	if err != nil {
		return nil, fmt.Errorf("loading item: %w", err)
	}
	if len(triples) == 0 {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, iri)
	}
	return decodeItem(iri, index(triples)), nil
}

func decodeItem(iri string, props map[string][]graph.Term) *domain.Item {
	it := &domain.Item{
		IRI:      iri,
		ID:       firstValue(props, vocabulary.UUID),
		Category: domain.CategoryNote,
		Previous: firstValue(props, vocabulary.WasRevisionOf),
	}
	if t, ok := first(props, vocabulary.Position); ok {
		it.Number, it.HasNumber = t.Int()
	}
	if t, ok := first(props, vocabulary.IsAnnouncement); ok {
		if b, _ := t.Bool(); b {
			it.Category = domain.CategoryAnnouncement
		}
	}
	if t, ok := first(props, vocabulary.FormallyOK); ok {
		if t.Value == vocabulary.ApprovalFormallyOK {
			it.Approval = domain.ApprovalOK
		} else {
			it.Approval = domain.ApprovalNotOK
		}
	}
	return it
}

// ListByAgenda returns every item of the agenda in store order.
func (r *GraphItemRepo) ListByAgenda(ctx context.Context, agendaIRI string) ([]*domain.Item, error) {
	iris, err := objectsOf(ctx, r.store, agendaIRI, vocabulary.HasPart)
	if err != nil {
		return nil, fmt.Errorf("listing agenda items: %w", err)
	}
	items := make([]*domain.Item, 0, len(iris))
	for _, iri := range iris {
		triples, err := r.store.Read(ctx, graph.Outgoing(iri))
		if err != nil {
			return nil, fmt.Errorf("loading item: %w", err)
		}
		items = append(items, decodeItem(iri, index(triples)))
	}
	return items, nil
}

// ListUnmigrated returns up to limit items of the agenda that have a
// provenance edge but no type yet, i.e. copies whose properties have not
// been carried over.
func (r *GraphItemRepo) ListUnmigrated(ctx context.Context, agendaIRI string, limit int) ([]*domain.Item, error) {
	iris, err := objectsOf(ctx, r.store, agendaIRI, vocabulary.HasPart)
	if err != nil {
		return nil, fmt.Errorf("listing agenda items: %w", err)
	}
	var out []*domain.Item
	for _, iri := range iris {
		if limit > 0 && len(out) >= limit {
			break
		}
		triples, err := r.store.Read(ctx, graph.Outgoing(iri))
		if err != nil {
			return nil, fmt.Errorf("loading item: %w", err)
		}
		props := index(triples)
		if len(props[vocabulary.WasRevisionOf]) == 0 || hasClass(props, vocabulary.ItemClass) {
			continue
		}
		out = append(out, decodeItem(iri, props))
	}
	return out, nil
}

// CreateRevision adds a bare copy of item.Previous to the agenda. The copy
// has no type until its properties are migrated.
func (r *GraphItemRepo) CreateRevision(ctx context.Context, agendaIRI string, item *domain.Item, now time.Time) error {
	_, err := r.store.Mutate(ctx, graph.Mutation{Insert: []graph.Triple{
		{Subject: item.IRI, Predicate: vocabulary.UUID, Object: graph.String(item.ID)},
		{Subject: item.IRI, Predicate: vocabulary.ItemCreated, Object: graph.DateTime(now)},
		{Subject: item.IRI, Predicate: vocabulary.WasRevisionOf, Object: graph.IRI(item.Previous)},
		{Subject: agendaIRI, Predicate: vocabulary.HasPart, Object: graph.IRI(item.IRI)},
	}})
	if err != nil {
		return fmt.Errorf("inserting item revision: %w", err)
	}
	return nil
}

func (r *GraphItemRepo) Delete(ctx context.Context, iri string) error {
	return sweep(ctx, r.store, iri)
}
