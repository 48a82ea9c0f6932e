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

// Facts a rollback leaves in place. The sequence number stays so the
// following resequence pass owns numbering.
var (
	rollbackKeepOutgoing = []string{vocabulary.Type, vocabulary.UUID, vocabulary.WasRevisionOf, vocabulary.Position}
	rollbackKeepIncoming = []string{vocabulary.HasPart, vocabulary.WasRevisionOf, vocabulary.GeneratesItem}
)

// Approval enforces the "formally OK" rules on an agenda.
type Approval struct {
	store  graph.Store
	items  repository.ItemRepo
	collab repository.CollaboratorRepo
	logger *slog.Logger
}

func NewApproval(store graph.Store, repos Repos, logger *slog.Logger) *Approval {
	if logger == nil {
		logger = slog.Default()
	}
	return &Approval{store: store, items: repos.Items, collab: repos.Collaborators, logger: logger}
}

// Enforce removes new items that are not OK and rolls recurring ones back
// to their predecessor. It returns how many items changed.
func (a *Approval) Enforce(ctx context.Context, agendaIRI string) (int, error) {
	fresh, err := a.SelectNewNotOK(ctx, agendaIRI)
	if err != nil {
		return 0, err
	}
	if err := a.RemoveItems(ctx, fresh); err != nil {
		return 0, err
	}

	recurring, err := a.SelectRecurringNotOK(ctx, agendaIRI)
	if err != nil {
		return len(fresh), err
	}
	rolledBack, err := a.Rollback(ctx, recurring)
	if err != nil {
		return len(fresh) + rolledBack, err
	}

	a.logger.DebugContext(ctx, "approval rules enforced", "agenda", agendaIRI, "removed", len(fresh), "rolled_back", rolledBack)
	return len(fresh) + rolledBack, nil
}

// SelectNewNotOK returns items without provenance whose flag is not OK.
func (a *Approval) SelectNewNotOK(ctx context.Context, agendaIRI string) ([]*domain.Item, error) {
	return a.selectNotOK(ctx, agendaIRI, true)
}

// SelectRecurringNotOK returns items with provenance whose flag is not OK.
func (a *Approval) SelectRecurringNotOK(ctx context.Context, agendaIRI string) ([]*domain.Item, error) {
	return a.selectNotOK(ctx, agendaIRI, false)
}

func (a *Approval) selectNotOK(ctx context.Context, agendaIRI string, fresh bool) ([]*domain.Item, error) {
	items, err := a.items.ListByAgenda(ctx, agendaIRI)
	if err != nil {
		return nil, err
	}
	var out []*domain.Item
	for _, it := range items {
		if it.NotOK() && it.IsNew() == fresh {
			out = append(out, it)
		}
	}
	domain.SortItems(out)
	return out, nil
}

// RemoveItems deletes each item with the treatment and scheduling records
// that belong to it alone. Items already gone are skipped.
func (a *Approval) RemoveItems(ctx context.Context, items []*domain.Item) error {
	for _, it := range items {
		if err := a.removeOwned(ctx, it.IRI); err != nil {
			return fmt.Errorf("removing item %s: %w", it.IRI, err)
		}
		if err := a.items.Delete(ctx, it.IRI); err != nil {
			return err
		}
	}
	return nil
}

func (a *Approval) removeOwned(ctx context.Context, itemIRI string) error {
	treatments, err := a.collab.TreatmentsOf(ctx, itemIRI)
	if err != nil {
		return err
	}
	for _, t := range treatments {
		owners, err := a.collab.ItemsTreatedBy(ctx, t)
		if err != nil {
			return err
		}
		if soleOwner(owners, itemIRI) {
			if err := a.collab.DeleteTreatment(ctx, t); err != nil {
				return err
			}
		}
	}

	activities, err := a.collab.ActivitiesOf(ctx, itemIRI)
	if err != nil {
		return err
	}
	for _, act := range activities {
		owners, err := a.collab.ItemsGeneratedBy(ctx, act)
		if err != nil {
			return err
		}
		if soleOwner(owners, itemIRI) {
			if err := a.collab.DeleteActivity(ctx, act); err != nil {
				return err
			}
		}
	}
	return nil
}

func soleOwner(owners []string, iri string) bool {
	return len(owners) == 1 && owners[0] == iri
}

// Rollback restores each item's content from its predecessor and returns
// how many items it rewrote. Per item, the current content is deleted and
// the predecessor's copied in by one mutation, so a failed item keeps its
// flag and is selected again on the next run.
func (a *Approval) Rollback(ctx context.Context, items []*domain.Item) (int, error) {
	rolledBack := 0
	for _, it := range items {
		if it.Previous == "" {
			continue
		}
		out, err := a.store.Read(ctx, graph.Outgoing(it.Previous, rollbackKeepOutgoing...))
		if err != nil {
			return rolledBack, fmt.Errorf("reading predecessor of %s: %w", it.IRI, err)
		}
		in, err := a.store.Read(ctx, graph.Incoming(it.Previous, rollbackKeepIncoming...))
		if err != nil {
			return rolledBack, fmt.Errorf("reading predecessor references of %s: %w", it.IRI, err)
		}
		if len(out) == 0 {
			a.logger.WarnContext(ctx, "predecessor has no facts, skipping rollback", "item", it.IRI, "previous", it.Previous)
			continue
		}

		if _, err := a.store.Mutate(ctx, graph.Mutation{
			Delete: []graph.Pattern{
				graph.Outgoing(it.IRI, rollbackKeepOutgoing...),
				graph.Incoming(it.IRI, rollbackKeepIncoming...),
			},
			Insert: retarget(it.Previous, it.IRI, out, in),
		}); err != nil {
			return rolledBack, fmt.Errorf("rolling back item %s: %w", it.IRI, err)
		}
		rolledBack++
	}
	return rolledBack, nil
}
