package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/vocabulary"
)

var statusConcepts = map[domain.AgendaStatus]string{
	domain.AgendaDesign:   vocabulary.StatusDesign,
	domain.AgendaApproved: vocabulary.StatusApproved,
	domain.AgendaClosed:   vocabulary.StatusClosed,
}

func statusFromConcept(iri string) domain.AgendaStatus {
	for status, concept := range statusConcepts {
		if concept == iri {
			return status
		}
	}
	return ""
}

// GraphAgendaRepo implements AgendaRepo on the fact store.
type GraphAgendaRepo struct {
	store graph.Store
}

func NewGraphAgendaRepo(s graph.Store) *GraphAgendaRepo {
	return &GraphAgendaRepo{store: s}
}

func (r *GraphAgendaRepo) Get(ctx context.Context, iri string) (*domain.Agenda, error) {
	triples, err := r.store.Read(ctx, graph.Outgoing(iri))
	if err != nil {
		return nil, fmt.Errorf("loading agenda: %w", err)
	}
	props := index(triples)
	if !hasClass(props, vocabulary.AgendaClass) {
		return nil, fmt.Errorf("%w: agenda %s", domain.ErrNotFound, iri)
	}

	a := &domain.Agenda{
		IRI:      iri,
		ID:       firstValue(props, vocabulary.UUID),
		Serial:   firstValue(props, vocabulary.SerialNumber),
		Title:    firstValue(props, vocabulary.Title),
		Status:   statusFromConcept(firstValue(props, vocabulary.AgendaStatus)),
		Meeting:  firstValue(props, vocabulary.IsAgendaFor),
		Previous: firstValue(props, vocabulary.WasRevisionOf),
	}
	if t, ok := first(props, vocabulary.Created); ok {
		a.Created, _ = t.Time()
	}
	if t, ok := first(props, vocabulary.Modified); ok {
		a.Modified, _ = t.Time()
	}
	return a, nil
}

// ListByMeeting returns the meeting's agendas, oldest generation first.
func (r *GraphAgendaRepo) ListByMeeting(ctx context.Context, meetingIRI string) ([]*domain.Agenda, error) {
	iris, err := subjectsOf(ctx, r.store, vocabulary.IsAgendaFor, meetingIRI)
	if err != nil {
		return nil, fmt.Errorf("listing agendas: %w", err)
	}
	agendas := make([]*domain.Agenda, 0, len(iris))
	for _, iri := range iris {
		a, err := r.Get(ctx, iri)
		if err != nil {
			return nil, err
		}
		agendas = append(agendas, a)
	}
	domain.SortAgendas(agendas)
	return agendas, nil
}

func (r *GraphAgendaRepo) Create(ctx context.Context, a *domain.Agenda) error {
	concept, ok := statusConcepts[a.Status]
	if !ok {
		return fmt.Errorf("unknown agenda status %q", a.Status)
	}
	triples := []graph.Triple{
		{Subject: a.IRI, Predicate: vocabulary.Type, Object: graph.IRI(vocabulary.AgendaClass)},
		{Subject: a.IRI, Predicate: vocabulary.UUID, Object: graph.String(a.ID)},
		{Subject: a.IRI, Predicate: vocabulary.Created, Object: graph.DateTime(a.Created)},
		{Subject: a.IRI, Predicate: vocabulary.Modified, Object: graph.DateTime(a.Modified)},
		{Subject: a.IRI, Predicate: vocabulary.Title, Object: graph.String(a.Title)},
		{Subject: a.IRI, Predicate: vocabulary.AgendaStatus, Object: graph.IRI(concept)},
		{Subject: a.IRI, Predicate: vocabulary.IsAgendaFor, Object: graph.IRI(a.Meeting)},
		{Subject: a.IRI, Predicate: vocabulary.SerialNumber, Object: graph.String(a.Serial)},
	}
	if a.Previous != "" {
		triples = append(triples, graph.Triple{Subject: a.IRI, Predicate: vocabulary.WasRevisionOf, Object: graph.IRI(a.Previous)})
	}
	if _, err := r.store.Mutate(ctx, graph.Mutation{Insert: triples}); err != nil {
		return fmt.Errorf("inserting agenda: %w", err)
	}
	return nil
}

func (r *GraphAgendaRepo) SetStatus(ctx context.Context, iri string, status domain.AgendaStatus, now time.Time) error {
	concept, ok := statusConcepts[status]
	if !ok {
		return fmt.Errorf("unknown agenda status %q", status)
	}
	res, err := r.store.Mutate(ctx, graph.Mutation{
		Where: []graph.Pattern{graph.Exact(graph.Triple{Subject: iri, Predicate: vocabulary.Type, Object: graph.IRI(vocabulary.AgendaClass)})},
		Delete: []graph.Pattern{
			graph.Property(iri, vocabulary.AgendaStatus),
			graph.Property(iri, vocabulary.Modified),
		},
		Insert: []graph.Triple{
			{Subject: iri, Predicate: vocabulary.AgendaStatus, Object: graph.IRI(concept)},
			{Subject: iri, Predicate: vocabulary.Modified, Object: graph.DateTime(now)},
		},
	})
	if err != nil {
		return fmt.Errorf("setting agenda status: %w", err)
	}
	if !res.Applied {
		return fmt.Errorf("%w: agenda %s", domain.ErrNotFound, iri)
	}
	return nil
}

// RelinkMeeting deletes and re-adds the agenda's meeting link as two
// separate writes so downstream caches see the meeting change.
func (r *GraphAgendaRepo) RelinkMeeting(ctx context.Context, agendaIRI, meetingIRI string) error {
	link := graph.Triple{Subject: agendaIRI, Predicate: vocabulary.IsAgendaFor, Object: graph.IRI(meetingIRI)}
	if _, err := r.store.Mutate(ctx, graph.Mutation{Delete: []graph.Pattern{graph.Exact(link)}}); err != nil {
		return fmt.Errorf("unlinking agenda from meeting: %w", err)
	}
	if _, err := r.store.Mutate(ctx, graph.Mutation{Insert: []graph.Triple{link}}); err != nil {
		return fmt.Errorf("relinking agenda to meeting: %w", err)
	}
	return nil
}

// Delete removes every fact about the agenda, including dangling edges
// from unrelated resources.
func (r *GraphAgendaRepo) Delete(ctx context.Context, iri string) error {
	return sweep(ctx, r.store, iri)
}
