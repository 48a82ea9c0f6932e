package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
)

// EntityLocator resolves external uuids to graph IRIs.
type EntityLocator interface {
	MeetingIRI(ctx context.Context, id string) (string, error)
	AgendaIRI(ctx context.Context, id string) (string, error)
}

type MeetingRepo interface {
	Get(ctx context.Context, iri string) (*domain.Meeting, error)
	MarkFinal(ctx context.Context, meetingIRI, agendaIRI string, now time.Time) error
	Reopen(ctx context.Context, meetingIRI string, now time.Time) error
	Delete(ctx context.Context, meetingIRI string) error
}

type AgendaRepo interface {
	Get(ctx context.Context, iri string) (*domain.Agenda, error)
	ListByMeeting(ctx context.Context, meetingIRI string) ([]*domain.Agenda, error)
	Create(ctx context.Context, a *domain.Agenda) error
	SetStatus(ctx context.Context, iri string, status domain.AgendaStatus, now time.Time) error
	RelinkMeeting(ctx context.Context, agendaIRI, meetingIRI string) error
	Delete(ctx context.Context, iri string) error
}

type ItemRepo interface {
	Get(ctx context.Context, iri string) (*domain.Item, error)
	ListByAgenda(ctx context.Context, agendaIRI string) ([]*domain.Item, error)
	ListUnmigrated(ctx context.Context, agendaIRI string, limit int) ([]*domain.Item, error)
	CreateRevision(ctx context.Context, agendaIRI string, item *domain.Item, now time.Time) error
	Delete(ctx context.Context, iri string) error
}

// CollaboratorRepo reads and removes the records that hang off items.
type CollaboratorRepo interface {
	TreatmentsOf(ctx context.Context, itemIRI string) ([]string, error)
	ItemsTreatedBy(ctx context.Context, treatmentIRI string) ([]string, error)
	ActivitiesOf(ctx context.Context, itemIRI string) ([]string, error)
	ItemsGeneratedBy(ctx context.Context, activityIRI string) ([]string, error)
	RequestsOf(ctx context.Context, activityIRI string) ([]string, error)
	ItemCountForRequest(ctx context.Context, requestIRI string) (int, error)
	DeleteTreatment(ctx context.Context, treatmentIRI string) error
	DeleteActivity(ctx context.Context, activityIRI string) error
	ReleaseRequest(ctx context.Context, requestIRI string) error
}
