package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/repository"
	"github.com/alexanderramin/agendacycle/internal/vocabulary"
	"github.com/google/uuid"
)

// Facts that identify an item generation and are never carried over.
var (
	migrateSkipOutgoing = []string{vocabulary.UUID, vocabulary.WasRevisionOf, vocabulary.ItemCreated}
	migrateSkipIncoming = []string{vocabulary.HasPart, vocabulary.WasRevisionOf}
)

// Versioning creates agenda generations and copies items into them.
type Versioning struct {
	store     graph.Store
	agendas   repository.AgendaRepo
	items     repository.ItemRepo
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

func NewVersioning(store graph.Store, repos Repos, cfg Config, logger *slog.Logger) *Versioning {
	if logger == nil {
		logger = slog.Default()
	}
	return &Versioning{
		store:     store,
		agendas:   repos.Agendas,
		items:     repos.Items,
		batchSize: cfg.batchSize(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateAgendaVersion adds a Design agenda to the meeting. previous may be
// nil for a meeting's first agenda.
func (v *Versioning) CreateAgendaVersion(ctx context.Context, meeting *domain.Meeting, previous *domain.Agenda) (*domain.Agenda, error) {
	existing, err := v.agendas.ListByMeeting(ctx, meeting.IRI)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := v.now()
	label := domain.SerialLabel(len(existing))
	a := &domain.Agenda{
		IRI:      vocabulary.AgendaBase + id,
		ID:       id,
		Serial:   label,
		Title:    fmt.Sprintf("Agenda %s for meeting %s", label, meeting.Date.Format("2006-01-02")),
		Status:   domain.AgendaDesign,
		Meeting:  meeting.IRI,
		Created:  now,
		Modified: now,
	}
	if previous != nil {
		a.Previous = previous.IRI
	}
	if err := v.agendas.Create(ctx, a); err != nil {
		return nil, err
	}
	v.logger.DebugContext(ctx, "agenda version created", "meeting", meeting.IRI, "agenda", a.IRI, "serial", label)
	return a, nil
}

// CopyItems gives next a provenance-linked copy of every item on previous
// and migrates their properties. It returns the number of copies.
func (v *Versioning) CopyItems(ctx context.Context, previous, next *domain.Agenda) (int, error) {
	items, err := v.items.ListByAgenda(ctx, previous.IRI)
	if err != nil {
		return 0, err
	}
	now := v.now()
	for _, it := range items {
		id := uuid.New().String()
		copyItem := &domain.Item{IRI: vocabulary.ItemBase + id, ID: id, Previous: it.IRI}
		if err := v.items.CreateRevision(ctx, next.IRI, copyItem, now); err != nil {
			return 0, err
		}
	}
	if _, err := v.MigrateProperties(ctx, next.IRI); err != nil {
		return 0, err
	}
	return len(items), nil
}

// MigrateProperties copies the facts of each unmigrated item's predecessor
// onto it, one batch per mutation, until none remain. It returns the
// number of items migrated; a second run returns zero and writes nothing.
func (v *Versioning) MigrateProperties(ctx context.Context, agendaIRI string) (int, error) {
	migrated := 0
	for {
		batch, err := v.items.ListUnmigrated(ctx, agendaIRI, v.batchSize)
		if err != nil {
			return migrated, err
		}
		if len(batch) == 0 {
			return migrated, nil
		}

		var insert []graph.Triple
		for _, target := range batch {
			facts, err := v.predecessorFacts(ctx, target)
			if err != nil {
				return migrated, err
			}
			insert = append(insert, facts...)
			insert = append(insert, graph.Triple{Subject: target.IRI, Predicate: vocabulary.Type, Object: graph.IRI(vocabulary.ItemClass)})
		}
		if _, err := v.store.Mutate(ctx, graph.Mutation{Insert: insert}); err != nil {
			return migrated, fmt.Errorf("migrating item batch: %w", err)
		}
		migrated += len(batch)
		v.logger.DebugContext(ctx, "item batch migrated", "agenda", agendaIRI, "items", len(batch), "facts", len(insert))
	}
}

func (v *Versioning) predecessorFacts(ctx context.Context, target *domain.Item) ([]graph.Triple, error) {
	out, err := v.store.Read(ctx, graph.Outgoing(target.Previous, migrateSkipOutgoing...))
	if err != nil {
		return nil, fmt.Errorf("reading predecessor facts: %w", err)
	}
	in, err := v.store.Read(ctx, graph.Incoming(target.Previous, migrateSkipIncoming...))
	if err != nil {
		return nil, fmt.Errorf("reading predecessor references: %w", err)
	}
	return retarget(target.Previous, target.IRI, out, in), nil
}

// retarget rewrites facts about from so they are about to.
func retarget(from, to string, outgoing, incoming []graph.Triple) []graph.Triple {
	facts := make([]graph.Triple, 0, len(outgoing)+len(incoming))
	for _, t := range outgoing {
		facts = append(facts, graph.Triple{Subject: to, Predicate: t.Predicate, Object: t.Object})
	}
	for _, t := range incoming {
		if t.Subject == from {
			continue
		}
		facts = append(facts, graph.Triple{Subject: t.Subject, Predicate: t.Predicate, Object: graph.IRI(to)})
	}
	return facts
}
