package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/vocabulary"
)

// GraphMeetingRepo implements MeetingRepo on the fact store.
type GraphMeetingRepo struct {
	store graph.Store
}

func NewGraphMeetingRepo(s graph.Store) *GraphMeetingRepo {
	return &GraphMeetingRepo{store: s}
}

func (r *GraphMeetingRepo) Get(ctx context.Context, iri string) (*domain.Meeting, error) {
	triples, err := r.store.Read(ctx, graph.Outgoing(iri))
	if err != nil {
		return nil, fmt.Errorf("loading meeting: %w", err)
	}
	props := index(triples)
	if !hasClass(props, vocabulary.MeetingClass) {
		return nil, fmt.Errorf("%w: meeting %s", domain.ErrNotFound, iri)
	}

	m := &domain.Meeting{
		IRI:           iri,
		ID:            firstValue(props, vocabulary.UUID),
		TreatedAgenda: firstValue(props, vocabulary.TreatedAgenda),
		Newsletter:    firstValue(props, vocabulary.GeneralNewsletter),
	}
	if t, ok := first(props, vocabulary.PlannedStart); ok {
		m.Date, _ = t.Time()
	}
	if t, ok := first(props, vocabulary.FinalVersion); ok {
		m.Final, _ = t.Bool()
	}
	return m, nil
}

// MarkFinal closes the meeting on agendaIRI.
func (r *GraphMeetingRepo) MarkFinal(ctx context.Context, meetingIRI, agendaIRI string, now time.Time) error {
	res, err := r.store.Mutate(ctx, graph.Mutation{
		Where: []graph.Pattern{meetingTypePattern(meetingIRI)},
		Delete: []graph.Pattern{
			graph.Property(meetingIRI, vocabulary.TreatedAgenda),
			graph.Property(meetingIRI, vocabulary.FinalVersion),
			graph.Property(meetingIRI, vocabulary.Modified),
		},
		Insert: []graph.Triple{
			{Subject: meetingIRI, Predicate: vocabulary.TreatedAgenda, Object: graph.IRI(agendaIRI)},
			{Subject: meetingIRI, Predicate: vocabulary.FinalVersion, Object: graph.Boolean(true)},
			{Subject: meetingIRI, Predicate: vocabulary.Modified, Object: graph.DateTime(now)},
		},
	})
	if err != nil {
		return fmt.Errorf("closing meeting: %w", err)
	}
	if !res.Applied {
		return fmt.Errorf("%w: meeting %s", domain.ErrNotFound, meetingIRI)
	}
	return nil
}

// Reopen clears the final flag and the treated-agenda link.
func (r *GraphMeetingRepo) Reopen(ctx context.Context, meetingIRI string, now time.Time) error {
	res, err := r.store.Mutate(ctx, graph.Mutation{
		Where: []graph.Pattern{meetingTypePattern(meetingIRI)},
		Delete: []graph.Pattern{
			graph.Property(meetingIRI, vocabulary.TreatedAgenda),
			graph.Property(meetingIRI, vocabulary.FinalVersion),
			graph.Property(meetingIRI, vocabulary.Modified),
		},
		Insert: []graph.Triple{
			{Subject: meetingIRI, Predicate: vocabulary.FinalVersion, Object: graph.Boolean(false)},
			{Subject: meetingIRI, Predicate: vocabulary.Modified, Object: graph.DateTime(now)},
		},
	})
	if err != nil {
		return fmt.Errorf("reopening meeting: %w", err)
	}
	if !res.Applied {
		return fmt.Errorf("%w: meeting %s", domain.ErrNotFound, meetingIRI)
	}
	return nil
}

// Delete removes the meeting together with its newsletter and publication
// records.
func (r *GraphMeetingRepo) Delete(ctx context.Context, meetingIRI string) error {
	newsletters, err := objectsOf(ctx, r.store, meetingIRI, vocabulary.GeneralNewsletter)
	if err != nil {
		return fmt.Errorf("listing meeting newsletters: %w", err)
	}
	publications, err := subjectsOf(ctx, r.store, vocabulary.PublicationFor, meetingIRI)
	if err != nil {
		return fmt.Errorf("listing meeting publications: %w", err)
	}
	for _, iri := range append(newsletters, publications...) {
		if err := sweep(ctx, r.store, iri); err != nil {
			return err
		}
	}
	return sweep(ctx, r.store, meetingIRI)
}

func meetingTypePattern(iri string) graph.Pattern {
	return graph.Exact(graph.Triple{Subject: iri, Predicate: vocabulary.Type, Object: graph.IRI(vocabulary.MeetingClass)})
}

func hasClass(props map[string][]graph.Term, class string) bool {
	for _, t := range props[vocabulary.Type] {
		if t.IsIRI() && t.Value == class {
			return true
		}
	}
	return false
}
