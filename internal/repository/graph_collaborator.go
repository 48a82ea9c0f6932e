package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/vocabulary"
)

// GraphCollaboratorRepo reads the scheduling, treatment, decision and
// newsletter records linked to items without interpreting them.
type GraphCollaboratorRepo struct {
	store graph.Store
}

func NewGraphCollaboratorRepo(s graph.Store) *GraphCollaboratorRepo {
	return &GraphCollaboratorRepo{store: s}
}

func (r *GraphCollaboratorRepo) TreatmentsOf(ctx context.Context, itemIRI string) ([]string, error) {
	return subjectsOf(ctx, r.store, vocabulary.HasSubject, itemIRI)
}

func (r *GraphCollaboratorRepo) ItemsTreatedBy(ctx context.Context, treatmentIRI string) ([]string, error) {
	return objectsOf(ctx, r.store, treatmentIRI, vocabulary.HasSubject)
}

func (r *GraphCollaboratorRepo) ActivitiesOf(ctx context.Context, itemIRI string) ([]string, error) {
	return subjectsOf(ctx, r.store, vocabulary.GeneratesItem, itemIRI)
}

func (r *GraphCollaboratorRepo) ItemsGeneratedBy(ctx context.Context, activityIRI string) ([]string, error) {
	return objectsOf(ctx, r.store, activityIRI, vocabulary.GeneratesItem)
}

func (r *GraphCollaboratorRepo) RequestsOf(ctx context.Context, activityIRI string) ([]string, error) {
	return objectsOf(ctx, r.store, activityIRI, vocabulary.TakesPlaceDuring)
}

// ItemCountForRequest counts the distinct items, on any agenda, generated
// by the scheduling activities of the request.
func (r *GraphCollaboratorRepo) ItemCountForRequest(ctx context.Context, requestIRI string) (int, error) {
	activities, err := subjectsOf(ctx, r.store, vocabulary.TakesPlaceDuring, requestIRI)
	if err != nil {
		return 0, fmt.Errorf("listing request activities: %w", err)
	}
	seen := map[string]bool{}
	for _, a := range activities {
		items, err := r.ItemsGeneratedBy(ctx, a)
		if err != nil {
			return 0, fmt.Errorf("listing activity items: %w", err)
		}
		for _, it := range items {
			seen[it] = true
		}
	}
	return len(seen), nil
}

// DeleteTreatment removes a treatment record with its decision and
// newsletter records.
func (r *GraphCollaboratorRepo) DeleteTreatment(ctx context.Context, treatmentIRI string) error {
	var dependents []string
	for _, pred := range []string{vocabulary.HasDecision, vocabulary.Generated} {
		iris, err := objectsOf(ctx, r.store, treatmentIRI, pred)
		if err != nil {
			return fmt.Errorf("listing treatment records: %w", err)
		}
		dependents = append(dependents, iris...)
	}
	for _, iri := range dependents {
		if err := sweep(ctx, r.store, iri); err != nil {
			return err
		}
	}
	return sweep(ctx, r.store, treatmentIRI)
}

func (r *GraphCollaboratorRepo) DeleteActivity(ctx context.Context, activityIRI string) error {
	return sweep(ctx, r.store, activityIRI)
}

// ReleaseRequest drops the request's meeting slot so it can be scheduled
// again.
func (r *GraphCollaboratorRepo) ReleaseRequest(ctx context.Context, requestIRI string) error {
	_, err := r.store.Mutate(ctx, graph.Mutation{
		Delete: []graph.Pattern{graph.Property(requestIRI, vocabulary.RequestedFor)},
	})
	if err != nil {
		return fmt.Errorf("releasing request: %w", err)
	}
	return nil
}
