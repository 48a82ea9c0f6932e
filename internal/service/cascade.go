package service

import (
	"context"
	"log/slog"

	"github.com/alexanderramin/agendacycle/internal/repository"
)

// Cascade deletes an agenda with its items and the scheduling records that
// exist only for them.
type Cascade struct {
	agendas repository.AgendaRepo
	items   repository.ItemRepo
	collab  repository.CollaboratorRepo
	settler Settler
	logger  *slog.Logger
}

// NewCascade returns a cascade that calls settler between phases. A nil
// settler skips the pauses.
func NewCascade(repos Repos, settler Settler, logger *slog.Logger) *Cascade {
	if settler == nil {
		settler = NoopSettler{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{
		agendas: repos.Agendas,
		items:   repos.Items,
		collab:  repos.Collaborators,
		settler: settler,
		logger:  logger,
	}
}

// DeleteAgendaAndItems releases requests whose only scheduled item is on the
// agenda, then sweeps every item, then sweeps the agenda itself. Re-running
// it after a partial failure finishes the job.
func (c *Cascade) DeleteAgendaAndItems(ctx context.Context, agendaIRI string) error {
	items, err := c.items.ListByAgenda(ctx, agendaIRI)
	if err != nil {
		return err
	}

	released := 0
	for _, it := range items {
		n, err := c.releaseSoleAppearances(ctx, it.IRI)
		if err != nil {
			return err
		}
		released += n
	}
	c.settler.Settle(ctx)

	for _, it := range items {
		if err := c.items.Delete(ctx, it.IRI); err != nil {
			return err
		}
	}
	c.settler.Settle(ctx)

	if err := c.agendas.Delete(ctx, agendaIRI); err != nil {
		return err
	}
	c.logger.DebugContext(ctx, "agenda cascade complete", "agenda", agendaIRI, "items", len(items), "released_requests", released)
	return nil
}

// releaseSoleAppearances cleans up every request for which itemIRI is the
// only generated item across all agendas. The activity is the only path
// from the item to its requests, so it is swept last.
func (c *Cascade) releaseSoleAppearances(ctx context.Context, itemIRI string) (int, error) {
	activities, err := c.collab.ActivitiesOf(ctx, itemIRI)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, act := range activities {
		requests, err := c.collab.RequestsOf(ctx, act)
		if err != nil {
			return released, err
		}
		var sole []string
		for _, req := range requests {
			count, err := c.collab.ItemCountForRequest(ctx, req)
			if err != nil {
				return released, err
			}
			if count == 1 {
				sole = append(sole, req)
			}
		}
		if len(sole) == 0 {
			continue
		}
		if err := c.deleteTreatments(ctx, itemIRI); err != nil {
			return released, err
		}
		for _, req := range sole {
			if err := c.collab.ReleaseRequest(ctx, req); err != nil {
				return released, err
			}
			released++
		}
		if err := c.collab.DeleteActivity(ctx, act); err != nil {
			return released, err
		}
	}
	return released, nil
}

func (c *Cascade) deleteTreatments(ctx context.Context, itemIRI string) error {
	treatments, err := c.collab.TreatmentsOf(ctx, itemIRI)
	if err != nil {
		return err
	}
	for _, t := range treatments {
		if err := c.collab.DeleteTreatment(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
