package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/vocabulary"
)

// subjectsOf lists resources with an edge `predicate` pointing at object.
func subjectsOf(ctx context.Context, r graph.Reader, predicate, object string) ([]string, error) {
	triples, err := r.Read(ctx, graph.Referrers(predicate, object))
	if err != nil {
		return nil, err
	}
	return graph.Subjects(triples), nil
}

// objectsOf lists the IRI values of `predicate` on subject.
func objectsOf(ctx context.Context, r graph.Reader, subject, predicate string) ([]string, error) {
	triples, err := r.Read(ctx, graph.Property(subject, predicate))
	if err != nil {
		return nil, err
	}
	return graph.Objects(triples), nil
}

func hasType(ctx context.Context, r graph.Reader, iri, class string) (bool, error) {
	triples, err := r.Read(ctx, graph.Exact(graph.Triple{Subject: iri, Predicate: vocabulary.Type, Object: graph.IRI(class)}))
	if err != nil {
		return false, err
	}
	return len(triples) > 0, nil
}

// sweep removes every fact with iri as subject or object.
func sweep(ctx context.Context, s graph.Store, iri string) error {
	_, err := s.Mutate(ctx, graph.Mutation{
		Delete: []graph.Pattern{graph.Outgoing(iri), graph.Incoming(iri)},
	})
	if err != nil {
		return fmt.Errorf("sweeping %s: %w", iri, err)
	}
	return nil
}

// index groups a subject's facts by predicate.
func index(triples []graph.Triple) map[string][]graph.Term {
	out := make(map[string][]graph.Term, len(triples))
	for _, t := range triples {
		out[t.Predicate] = append(out[t.Predicate], t.Object)
	}
	return out
}

func first(props map[string][]graph.Term, predicate string) (graph.Term, bool) {
	vals := props[predicate]
	if len(vals) == 0 {
		return graph.Term{}, false
	}
	return vals[0], true
}

func firstValue(props map[string][]graph.Term, predicate string) string {
	t, _ := first(props, predicate)
	return t.Value
}
