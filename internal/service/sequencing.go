package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/repository"
	"github.com/alexanderramin/agendacycle/internal/vocabulary"
)

// Sequencer renumbers an agenda's items into gap-free runs per category.
type Sequencer struct {
	store     graph.Store
	items     repository.ItemRepo
	batchSize int
	logger    *slog.Logger
}

func NewSequencer(store graph.Store, repos Repos, cfg Config, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequencer{store: store, items: repos.Items, batchSize: cfg.batchSize(), logger: logger}
}

type renumber struct {
	item   *domain.Item
	number int
}

// planRenumbering returns the items whose number must change, in agenda order.
// Items in pushToEnd keep their relative order after all other items.
func planRenumbering(items []*domain.Item, pushToEnd []string) []renumber {
	ordered := append([]*domain.Item(nil), items...)
	domain.SortItems(ordered)

	if len(pushToEnd) > 0 {
		push := make(map[string]bool, len(pushToEnd))
		for _, iri := range pushToEnd {
			push[iri] = true
		}
		head := make([]*domain.Item, 0, len(ordered))
		var tail []*domain.Item
		for _, it := range ordered {
			if push[it.IRI] {
				tail = append(tail, it)
			} else {
				head = append(head, it)
			}
		}
		ordered = append(head, tail...)
	}

	next := map[domain.Category]int{}
	var changes []renumber
	for _, it := range ordered {
		next[it.Category]++
		n := next[it.Category]
		if !it.HasNumber || it.Number != n {
			changes = append(changes, renumber{item: it, number: n})
		}
	}
	return changes
}

// Resequence writes the new numbers in batched mutations and returns how
// many items were renumbered. An agenda already in order causes no writes.
func (s *Sequencer) Resequence(ctx context.Context, agendaIRI string, pushToEnd []string) (int, error) {
	items, err := s.items.ListByAgenda(ctx, agendaIRI)
	if err != nil {
		return 0, err
	}
	changes := planRenumbering(items, pushToEnd)

	for start := 0; start < len(changes); start += s.batchSize {
		end := min(start+s.batchSize, len(changes))
		var m graph.Mutation
		for _, c := range changes[start:end] {
			m.Delete = append(m.Delete, graph.Property(c.item.IRI, vocabulary.Position))
			m.Insert = append(m.Insert, graph.Triple{Subject: c.item.IRI, Predicate: vocabulary.Position, Object: graph.Integer(c.number)})
		}
		if _, err := s.store.Mutate(ctx, m); err != nil {
			return start, fmt.Errorf("renumbering items: %w", err)
		}
	}

	if len(changes) > 0 {
		s.logger.DebugContext(ctx, "agenda resequenced", "agenda", agendaIRI, "renumbered", len(changes), "pushed", len(pushToEnd))
	}
	return len(changes), nil
}
