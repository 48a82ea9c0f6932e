// Package graph is the client boundary to the subject–predicate–object fact
// store. Callers describe reads and writes with typed patterns; no query
// text is assembled outside this package.
package graph

import "context"

// Triple is one fact.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    Term   `json:"object"`
}

// Pattern selects facts. Empty fields match anything.
type Pattern struct {
	Subject          string
	Predicate        string
	Object           *Term
	ExceptPredicates []string
}

// Exact matches exactly one fact.
func Exact(t Triple) Pattern {
	obj := t.Object
	return Pattern{Subject: t.Subject, Predicate: t.Predicate, Object: &obj}
}

// Outgoing matches every fact with the given subject.
func Outgoing(subject string, except ...string) Pattern {
	return Pattern{Subject: subject, ExceptPredicates: except}
}

// Incoming matches every fact pointing at the given resource.
func Incoming(object string, except ...string) Pattern {
	obj := IRI(object)
	return Pattern{Object: &obj, ExceptPredicates: except}
}

// Property matches the values of one predicate on one subject.
func Property(subject, predicate string) Pattern {
	return Pattern{Subject: subject, Predicate: predicate}
}

// Referrers matches facts with the given predicate pointing at object.
func Referrers(predicate, object string) Pattern {
	obj := IRI(object)
	return Pattern{Predicate: predicate, Object: &obj}
}

// Mutation is applied atomically: every Where pattern must match at least
// one fact, then all Delete patterns are removed, then Insert is added.
// If a Where pattern matches nothing, the mutation is skipped.
type Mutation struct {
	Where  []Pattern
	Delete []Pattern
	Insert []Triple
}

func (m Mutation) Empty() bool { return len(m.Delete) == 0 && len(m.Insert) == 0 }

// Result reports the effect of a mutation.
type Result struct {
	Applied  bool
	Deleted  int
	Inserted int
}

// Writes is the number of facts that actually changed.
func (r Result) Writes() int { return r.Deleted + r.Inserted }

type Reader interface {
	Read(ctx context.Context, p Pattern) ([]Triple, error)
}

// Store is the narrow contract every engine depends on.
type Store interface {
	Reader
	Mutate(ctx context.Context, m Mutation) (Result, error)
}

// Subjects returns the distinct subjects of the given facts in order.
func Subjects(triples []Triple) []string {
	seen := make(map[string]bool, len(triples))
	var out []string
	for _, t := range triples {
		if !seen[t.Subject] {
			seen[t.Subject] = true
			out = append(out, t.Subject)
		}
	}
	return out
}

// Objects returns the distinct IRI objects of the given facts in order.
func Objects(triples []Triple) []string {
	seen := make(map[string]bool, len(triples))
	var out []string
	for _, t := range triples {
		if t.Object.IsIRI() && !seen[t.Object.Value] {
			seen[t.Object.Value] = true
			out = append(out, t.Object.Value)
		}
	}
	return out
}
