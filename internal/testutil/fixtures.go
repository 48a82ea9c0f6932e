package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/vocabulary"
	"github.com/google/uuid"
)

const (
	meetingBase     = "http://themis.vlaanderen.be/id/zitting/"
	activityBase    = "http://themis.vlaanderen.be/id/agendering/"
	requestBase     = "http://themis.vlaanderen.be/id/dossier/"
	treatmentBase   = "http://themis.vlaanderen.be/id/behandeling-van-agendapunt/"
	decisionBase    = "http://themis.vlaanderen.be/id/beslissing/"
	newsletterBase  = "http://themis.vlaanderen.be/id/nieuwsbrief-info/"
	publicationBase = "http://themis.vlaanderen.be/id/publicatie/"
)

// Fixture writes meetings, agendas, items and their collaborator records
// straight into a store.
type Fixture struct {
	t     *testing.T
	Store graph.Store
	Now   time.Time
}

func NewFixture(t *testing.T, s graph.Store) *Fixture {
	return &Fixture{t: t, Store: s, Now: time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)}
}

func (f *Fixture) insert(triples ...graph.Triple) {
	f.t.Helper()
	if _, err := f.Store.Mutate(context.Background(), graph.Mutation{Insert: triples}); err != nil {
		f.t.Fatalf("inserting fixture facts: %v", err)
	}
}

func fact(s, p string, o graph.Term) graph.Triple {
	return graph.Triple{Subject: s, Predicate: p, Object: o}
}

func mint(base string) (string, string) {
	id := uuid.New().String()
	return base + id, id
}

// Meeting options
type MeetingOption func(*domain.Meeting)

func WithFinal() MeetingOption {
	return func(m *domain.Meeting) { m.Final = true }
}

func WithNewsletter() MeetingOption {
	return func(m *domain.Meeting) { m.Newsletter, _ = mint(newsletterBase) }
}

func (f *Fixture) Meeting(opts ...MeetingOption) *domain.Meeting {
	f.t.Helper()
	iri, id := mint(meetingBase)
	m := &domain.Meeting{IRI: iri, ID: id, Date: f.Now.AddDate(0, 0, 7)}
	for _, opt := range opts {
		opt(m)
	}
	triples := []graph.Triple{
		fact(iri, vocabulary.Type, graph.IRI(vocabulary.MeetingClass)),
		fact(iri, vocabulary.UUID, graph.String(id)),
		fact(iri, vocabulary.PlannedStart, graph.DateTime(m.Date)),
		fact(iri, vocabulary.FinalVersion, graph.Boolean(m.Final)),
	}
	if m.Newsletter != "" {
		triples = append(triples,
			fact(iri, vocabulary.GeneralNewsletter, graph.IRI(m.Newsletter)),
			fact(m.Newsletter, vocabulary.Type, graph.IRI(vocabulary.NewsletterClass)),
		)
	}
	f.insert(triples...)
	return m
}

// Publication attaches a publication record to the meeting.
func (f *Fixture) Publication(m *domain.Meeting) string {
	f.t.Helper()
	iri, id := mint(publicationBase)
	f.insert(
		fact(iri, vocabulary.UUID, graph.String(id)),
		fact(iri, vocabulary.PublicationFor, graph.IRI(m.IRI)),
	)
	return iri
}

// Agenda options
type AgendaOption func(*domain.Agenda)

func WithPrevious(prev *domain.Agenda) AgendaOption {
	return func(a *domain.Agenda) { a.Previous = prev.IRI }
}

func WithSerial(label string) AgendaOption {
	return func(a *domain.Agenda) { a.Serial = label }
}

// Agenda adds an agenda for m. Serial labels follow the number of agendas
// created through this fixture for the meeting unless WithSerial is given.
func (f *Fixture) Agenda(m *domain.Meeting, status domain.AgendaStatus, opts ...AgendaOption) *domain.Agenda {
	f.t.Helper()
	existing, err := f.Store.Read(context.Background(), graph.Referrers(vocabulary.IsAgendaFor, m.IRI))
	if err != nil {
		f.t.Fatalf("counting agendas: %v", err)
	}
	iri, id := mint(vocabulary.AgendaBase)
	created := f.Now.Add(time.Duration(len(existing)) * time.Minute)
	a := &domain.Agenda{
		IRI:      iri,
		ID:       id,
		Serial:   domain.SerialLabel(len(existing)),
		Title:    "Agenda " + domain.SerialLabel(len(existing)),
		Status:   status,
		Meeting:  m.IRI,
		Created:  created,
		Modified: created,
	}
	for _, opt := range opts {
		opt(a)
	}
	concepts := map[domain.AgendaStatus]string{
		domain.AgendaDesign:   vocabulary.StatusDesign,
		domain.AgendaApproved: vocabulary.StatusApproved,
		domain.AgendaClosed:   vocabulary.StatusClosed,
	}
	triples := []graph.Triple{
		fact(iri, vocabulary.Type, graph.IRI(vocabulary.AgendaClass)),
		fact(iri, vocabulary.UUID, graph.String(id)),
		fact(iri, vocabulary.Title, graph.String(a.Title)),
		fact(iri, vocabulary.SerialNumber, graph.String(a.Serial)),
		fact(iri, vocabulary.AgendaStatus, graph.IRI(concepts[status])),
		fact(iri, vocabulary.IsAgendaFor, graph.IRI(m.IRI)),
		fact(iri, vocabulary.Created, graph.DateTime(a.Created)),
		fact(iri, vocabulary.Modified, graph.DateTime(a.Modified)),
	}
	if a.Previous != "" {
		triples = append(triples, fact(iri, vocabulary.WasRevisionOf, graph.IRI(a.Previous)))
	}
	f.insert(triples...)
	return a
}

// Item options
type ItemOption func(*itemSpec)

type itemSpec struct {
	item    *domain.Item
	payload []graph.Triple
}

func WithNumber(n int) ItemOption {
	return func(s *itemSpec) { s.item.Number, s.item.HasNumber = n, true }
}

func AsAnnouncement() ItemOption {
	return func(s *itemSpec) { s.item.Category = domain.CategoryAnnouncement }
}

func WithApproval(a domain.Approval) ItemOption {
	return func(s *itemSpec) { s.item.Approval = a }
}

// RevisionOf links the item to its predecessor on an earlier agenda.
func RevisionOf(prev *domain.Item) ItemOption {
	return func(s *itemSpec) { s.item.Previous = prev.IRI }
}

// WithPayload adds an opaque outgoing fact to the item.
func WithPayload(predicate string, object graph.Term) ItemOption {
	return func(s *itemSpec) {
		s.payload = append(s.payload, fact(s.item.IRI, predicate, object))
	}
}

// Item adds a fully migrated item to the agenda.
func (f *Fixture) Item(a *domain.Agenda, opts ...ItemOption) *domain.Item {
	f.t.Helper()
	iri, id := mint(vocabulary.ItemBase)
	spec := &itemSpec{item: &domain.Item{IRI: iri, ID: id, Category: domain.CategoryNote}}
	for _, opt := range opts {
		opt(spec)
	}
	it := spec.item
	triples := []graph.Triple{
		fact(iri, vocabulary.Type, graph.IRI(vocabulary.ItemClass)),
		fact(iri, vocabulary.UUID, graph.String(id)),
		fact(iri, vocabulary.ItemCreated, graph.DateTime(f.Now)),
		fact(iri, vocabulary.IsAnnouncement, graph.Boolean(it.Category == domain.CategoryAnnouncement)),
		fact(a.IRI, vocabulary.HasPart, graph.IRI(iri)),
	}
	if it.HasNumber {
		triples = append(triples, fact(iri, vocabulary.Position, graph.Integer(it.Number)))
	}
	switch it.Approval {
	case domain.ApprovalOK:
		triples = append(triples, fact(iri, vocabulary.FormallyOK, graph.IRI(vocabulary.ApprovalFormallyOK)))
	case domain.ApprovalNotOK:
		triples = append(triples, fact(iri, vocabulary.FormallyOK, graph.IRI(vocabulary.ApprovalNotYetOK)))
	}
	if it.Previous != "" {
		triples = append(triples, fact(iri, vocabulary.WasRevisionOf, graph.IRI(it.Previous)))
	}
	triples = append(triples, spec.payload...)
	f.insert(triples...)
	return it
}

// Treatment adds a treatment record for the items, with a decision and a
// newsletter record. It returns the treatment, decision and newsletter IRIs.
func (f *Fixture) Treatment(items ...*domain.Item) (string, string, string) {
	f.t.Helper()
	treatment, tid := mint(treatmentBase)
	decision, did := mint(decisionBase)
	newsletter, nid := mint(newsletterBase)
	triples := []graph.Triple{
		fact(treatment, vocabulary.Type, graph.IRI(vocabulary.TreatmentClass)),
		fact(treatment, vocabulary.UUID, graph.String(tid)),
		fact(treatment, vocabulary.HasDecision, graph.IRI(decision)),
		fact(treatment, vocabulary.Generated, graph.IRI(newsletter)),
		fact(decision, vocabulary.UUID, graph.String(did)),
		fact(newsletter, vocabulary.UUID, graph.String(nid)),
		fact(newsletter, vocabulary.Type, graph.IRI(vocabulary.NewsletterClass)),
	}
	for _, it := range items {
		triples = append(triples, fact(treatment, vocabulary.HasSubject, graph.IRI(it.IRI)))
	}
	f.insert(triples...)
	return treatment, decision, newsletter
}

// Request adds a request asking for a slot on the meeting.
func (f *Fixture) Request(m *domain.Meeting) string {
	f.t.Helper()
	iri, id := mint(requestBase)
	f.insert(
		fact(iri, vocabulary.Type, graph.IRI(vocabulary.RequestClass)),
		fact(iri, vocabulary.UUID, graph.String(id)),
		fact(iri, vocabulary.RequestedFor, graph.IRI(m.IRI)),
	)
	return iri
}

// Activity adds a scheduling activity for the request that generated the
// given items.
func (f *Fixture) Activity(request string, items ...*domain.Item) string {
	f.t.Helper()
	iri, id := mint(activityBase)
	triples := []graph.Triple{
		fact(iri, vocabulary.Type, graph.IRI(vocabulary.SchedulingActivityClass)),
		fact(iri, vocabulary.UUID, graph.String(id)),
		fact(iri, vocabulary.TakesPlaceDuring, graph.IRI(request)),
	}
	for _, it := range items {
		triples = append(triples, fact(iri, vocabulary.GeneratesItem, graph.IRI(it.IRI)))
	}
	f.insert(triples...)
	return iri
}

// Link adds one arbitrary fact.
func (f *Fixture) Link(subject, predicate string, object graph.Term) {
	f.t.Helper()
	f.insert(fact(subject, predicate, object))
}

// Facts returns every fact with iri as subject.
func (f *Fixture) Facts(iri string) []graph.Triple {
	f.t.Helper()
	out, err := f.Store.Read(context.Background(), graph.Outgoing(iri))
	if err != nil {
		f.t.Fatalf("reading facts: %v", err)
	}
	return out
}

// Exists reports whether any fact mentions iri as subject or object.
func (f *Fixture) Exists(iri string) bool {
	f.t.Helper()
	ctx := context.Background()
	out, err := f.Store.Read(ctx, graph.Outgoing(iri))
	if err != nil {
		f.t.Fatalf("reading facts: %v", err)
	}
	in, err := f.Store.Read(ctx, graph.Incoming(iri))
	if err != nil {
		f.t.Fatalf("reading facts: %v", err)
	}
	return len(out)+len(in) > 0
}

// Has reports whether the exact fact is present.
func (f *Fixture) Has(subject, predicate string, object graph.Term) bool {
	f.t.Helper()
	out, err := f.Store.Read(context.Background(), graph.Exact(fact(subject, predicate, object)))
	if err != nil {
		f.t.Fatalf("reading facts: %v", err)
	}
	return len(out) > 0
}
