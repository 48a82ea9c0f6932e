package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/vocabulary"
)

// GraphLocator implements EntityLocator by uuid literal lookup.
type GraphLocator struct {
	store graph.Reader
}

func NewGraphLocator(r graph.Reader) *GraphLocator {
	return &GraphLocator{store: r}
}

func (l *GraphLocator) MeetingIRI(ctx context.Context, id string) (string, error) {
	return l.resolve(ctx, id, vocabulary.MeetingClass, "meeting")
}

func (l *GraphLocator) AgendaIRI(ctx context.Context, id string) (string, error) {
	return l.resolve(ctx, id, vocabulary.AgendaClass, "agenda")
}

func (l *GraphLocator) resolve(ctx context.Context, id, class, noun string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: %s id is empty", domain.ErrNotFound, noun)
	}
	literal := graph.String(id)
	triples, err := l.store.Read(ctx, graph.Pattern{Predicate: vocabulary.UUID, Object: &literal})
	if err != nil {
		return "", fmt.Errorf("looking up %s %s: %w", noun, id, err)
	}
	for _, iri := range graph.Subjects(triples) {
		ok, err := hasType(ctx, l.store, iri, class)
		if err != nil {
			return "", fmt.Errorf("checking type of %s: %w", iri, err)
		}
		if ok {
			return iri, nil
		}
	}
	return "", fmt.Errorf("%w: %s with id %s", domain.ErrNotFound, noun, id)
}
