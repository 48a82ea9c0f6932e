package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/graph"
)

// Lifecycle drives the agenda state machine of a meeting. Every action is a
// strictly sequential series of store mutations; none is wrapped in a
// transaction, so each one is written to be safe to re-run after a failure.
type Lifecycle struct {
	cfg        Config
	repos      Repos
	versioning *Versioning
	approval   *Approval
	sequencer  *Sequencer
	cascade    *Cascade
	observer   UseCaseObserver
	logger     *slog.Logger
	now        func() time.Time
}

type LifecycleOption func(*Lifecycle)

func WithLogger(l *slog.Logger) LifecycleOption {
	return func(lc *Lifecycle) {
		if l != nil {
			lc.logger = l
		}
	}
}

func WithClock(now func() time.Time) LifecycleOption {
	return func(lc *Lifecycle) { lc.now = now }
}

func WithObservers(observers ...UseCaseObserver) LifecycleOption {
	return func(lc *Lifecycle) { lc.observer = useCaseObserverOrNoop(observers) }
}

func NewLifecycle(store graph.Store, cfg Config, opts ...LifecycleOption) *Lifecycle {
	lc := &Lifecycle{
		cfg:      cfg,
		repos:    NewGraphRepos(store),
		observer: NoopUseCaseObserver{},
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(lc)
	}
	lc.logger = lc.logger.With("graph", cfg.GraphPartition)
	lc.versioning = NewVersioning(store, lc.repos, cfg, lc.logger)
	lc.versioning.now = lc.now
	lc.approval = NewApproval(store, lc.repos, lc.logger)
	lc.sequencer = NewSequencer(store, lc.repos, cfg, lc.logger)
	lc.cascade = NewCascade(lc.repos, NewSettler(cfg.SettleDelay), lc.logger)
	return lc
}

// state is what every action loads first.
type state struct {
	meeting *domain.Meeting
	agendas []*domain.Agenda
}

func (lc *Lifecycle) load(ctx context.Context, meetingIRI string) (*state, error) {
	m, err := lc.repos.Meetings.Get(ctx, meetingIRI)
	if err != nil {
		return nil, err
	}
	agendas, err := lc.repos.Agendas.ListByMeeting(ctx, meetingIRI)
	if err != nil {
		return nil, err
	}
	return &state{meeting: m, agendas: agendas}, nil
}

func (lc *Lifecycle) observe(ctx context.Context, name, meetingIRI string, fields map[string]any, err *error) func() {
	startedAt := time.Now()
	if fields == nil {
		fields = map[string]any{}
	}
	fields["meeting"] = meetingIRI
	return func() {
		lc.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   *err == nil,
			Err:       *err,
			Fields:    fields,
		})
	}
}

func precondition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrPreconditionFailed, fmt.Sprintf(format, args...))
}

// Approve approves the Design agenda and opens the next one. Items that
// fail the approval rules are removed from or rolled back on the approved
// agenda; their copies on the new agenda are kept and moved to the bottom.
func (lc *Lifecycle) Approve(ctx context.Context, meetingIRI string) (next *domain.Agenda, err error) {
	fields := map[string]any{}
	defer lc.observe(ctx, "approve", meetingIRI, fields, &err)()

	st, err := lc.load(ctx, meetingIRI)
	if err != nil {
		return nil, err
	}
	design := domain.DesignAgenda(st.agendas)
	if design == nil {
		return nil, precondition("meeting %s has no design agenda to approve", st.meeting.ID)
	}
	fields["agenda"] = design.IRI

	if err = lc.repos.Agendas.SetStatus(ctx, design.IRI, domain.AgendaApproved, lc.now()); err != nil {
		return nil, err
	}
	next, err = lc.versioning.CreateAgendaVersion(ctx, st.meeting, design)
	if err != nil {
		return nil, err
	}
	fields["new_agenda"] = next.IRI
	copied, err := lc.versioning.CopyItems(ctx, design, next)
	if err != nil {
		return nil, err
	}
	fields["copied"] = copied

	changes, err := lc.approval.Enforce(ctx, design.IRI)
	if err != nil {
		return nil, err
	}
	fields["changes"] = changes
	if changes > 0 {
		if _, err = lc.sequencer.Resequence(ctx, design.IRI, nil); err != nil {
			return nil, err
		}
		var laggards []*domain.Item
		laggards, err = lc.approval.SelectNewNotOK(ctx, next.IRI)
		if err != nil {
			return nil, err
		}
		if _, err = lc.sequencer.Resequence(ctx, next.IRI, itemIRIs(laggards)); err != nil {
			return nil, err
		}
	}
	return next, nil
}

// ApproveAndClose approves the Design agenda as the final one and closes
// the meeting on it. No new agenda is created.
func (lc *Lifecycle) ApproveAndClose(ctx context.Context, meetingIRI string) (closed *domain.Agenda, err error) {
	fields := map[string]any{}
	defer lc.observe(ctx, "approve-and-close", meetingIRI, fields, &err)()

	st, err := lc.load(ctx, meetingIRI)
	if err != nil {
		return nil, err
	}
	design := domain.DesignAgenda(st.agendas)
	if design == nil {
		return nil, precondition("meeting %s has no design agenda to approve", st.meeting.ID)
	}
	fields["agenda"] = design.IRI

	now := lc.now()
	if err = lc.repos.Agendas.SetStatus(ctx, design.IRI, domain.AgendaClosed, now); err != nil {
		return nil, err
	}
	if err = lc.repos.Meetings.MarkFinal(ctx, meetingIRI, design.IRI, now); err != nil {
		return nil, err
	}
	changes, err := lc.approval.Enforce(ctx, design.IRI)
	if err != nil {
		return nil, err
	}
	fields["changes"] = changes
	if changes > 0 {
		if _, err = lc.sequencer.Resequence(ctx, design.IRI, nil); err != nil {
			return nil, err
		}
	}
	design.Status = domain.AgendaClosed
	return design, nil
}

// CloseMeeting closes the meeting on its most recent approved agenda and
// discards any Design agenda in progress.
func (lc *Lifecycle) CloseMeeting(ctx context.Context, meetingIRI string) (last *domain.Agenda, err error) {
	fields := map[string]any{}
	defer lc.observe(ctx, "close", meetingIRI, fields, &err)()

	st, err := lc.load(ctx, meetingIRI)
	if err != nil {
		return nil, err
	}
	last = domain.LastNonDesign(st.agendas)
	if last == nil || last.Status != domain.AgendaApproved {
		return nil, precondition("meeting %s has no approved agenda to close on", st.meeting.ID)
	}
	fields["agenda"] = last.IRI

	now := lc.now()
	if err = lc.repos.Agendas.SetStatus(ctx, last.IRI, domain.AgendaClosed, now); err != nil {
		return nil, err
	}
	if err = lc.repos.Meetings.MarkFinal(ctx, meetingIRI, last.IRI, now); err != nil {
		return nil, err
	}
	if design := domain.DesignAgenda(st.agendas); design != nil {
		fields["discarded"] = design.IRI
		if err = lc.cascade.DeleteAgendaAndItems(ctx, design.IRI); err != nil {
			return nil, err
		}
	}
	last.Status = domain.AgendaClosed
	return last, nil
}

// ReopenPrevious turns the most recent approved or closed agenda back into
// the Design agenda, discarding the current draft and reopening a final
// meeting.
func (lc *Lifecycle) ReopenPrevious(ctx context.Context, meetingIRI string) (reopened *domain.Agenda, err error) {
	fields := map[string]any{}
	defer lc.observe(ctx, "reopen-previous", meetingIRI, fields, &err)()

	st, err := lc.load(ctx, meetingIRI)
	if err != nil {
		return nil, err
	}
	reopened = domain.LastNonDesign(st.agendas)
	if reopened == nil {
		return nil, precondition("meeting %s has no approved agenda to reopen", st.meeting.ID)
	}
	fields["agenda"] = reopened.IRI

	if design := domain.DesignAgenda(st.agendas); design != nil {
		fields["discarded"] = design.IRI
		if err = lc.cascade.DeleteAgendaAndItems(ctx, design.IRI); err != nil {
			return nil, err
		}
	}
	now := lc.now()
	if err = lc.repos.Agendas.SetStatus(ctx, reopened.IRI, domain.AgendaDesign, now); err != nil {
		return nil, err
	}
	if st.meeting.Final {
		if err = lc.repos.Meetings.Reopen(ctx, meetingIRI, now); err != nil {
			return nil, err
		}
	}
	reopened.Status = domain.AgendaDesign
	return reopened, nil
}

// CreateDesignAgenda reopens the meeting and starts a new Design agenda
// from the most recent approved one.
func (lc *Lifecycle) CreateDesignAgenda(ctx context.Context, meetingIRI string) (next *domain.Agenda, err error) {
	fields := map[string]any{}
	defer lc.observe(ctx, "create-design-agenda", meetingIRI, fields, &err)()

	st, err := lc.load(ctx, meetingIRI)
	if err != nil {
		return nil, err
	}
	if design := domain.DesignAgenda(st.agendas); design != nil {
		return nil, precondition("meeting %s already has design agenda %s", st.meeting.ID, design.ID)
	}

	now := lc.now()
	if err = lc.repos.Meetings.Reopen(ctx, meetingIRI, now); err != nil {
		return nil, err
	}
	last := domain.LastNonDesign(st.agendas)
	if last != nil && last.Status != domain.AgendaApproved {
		if err = lc.repos.Agendas.SetStatus(ctx, last.IRI, domain.AgendaApproved, now); err != nil {
			return nil, err
		}
	}

	next, err = lc.versioning.CreateAgendaVersion(ctx, st.meeting, last)
	if err != nil {
		return nil, err
	}
	fields["new_agenda"] = next.IRI
	if last != nil {
		var copied int
		copied, err = lc.versioning.CopyItems(ctx, last, next)
		if err != nil {
			return nil, err
		}
		fields["copied"] = copied
	}
	return next, nil
}

// DeleteAgenda deletes the meeting's most recent agenda. When no approved
// or closed agenda is left the meeting itself goes too.
func (lc *Lifecycle) DeleteAgenda(ctx context.Context, meetingIRI, agendaIRI string) (err error) {
	fields := map[string]any{"agenda": agendaIRI}
	defer lc.observe(ctx, "delete-agenda", meetingIRI, fields, &err)()

	st, err := lc.load(ctx, meetingIRI)
	if err != nil {
		return err
	}
	var remaining []*domain.Agenda
	found := false
	for _, a := range st.agendas {
		if a.IRI == agendaIRI {
			found = true
			continue
		}
		remaining = append(remaining, a)
	}
	if !found {
		return fmt.Errorf("%w: agenda %s is not on meeting %s", domain.ErrNotFound, agendaIRI, st.meeting.ID)
	}
	if latest := domain.LatestAgenda(st.agendas); latest.IRI != agendaIRI {
		return precondition("agenda %s is not the most recent agenda of meeting %s", agendaIRI, st.meeting.ID)
	}

	if err = lc.cascade.DeleteAgendaAndItems(ctx, agendaIRI); err != nil {
		return err
	}

	last := domain.LastNonDesign(remaining)
	if last == nil {
		for _, a := range remaining {
			if err = lc.cascade.DeleteAgendaAndItems(ctx, a.IRI); err != nil {
				return err
			}
		}
		fields["meeting_deleted"] = true
		return lc.repos.Meetings.Delete(ctx, meetingIRI)
	}
	fields["relinked"] = last.IRI
	return lc.repos.Agendas.RelinkMeeting(ctx, last.IRI, meetingIRI)
}

// ApproveOnly marks the Design agenda Approved without opening a new one.
func (lc *Lifecycle) ApproveOnly(ctx context.Context, meetingIRI string) (approved *domain.Agenda, err error) {
	fields := map[string]any{}
	defer lc.observe(ctx, "approve-only", meetingIRI, fields, &err)()

	st, err := lc.load(ctx, meetingIRI)
	if err != nil {
		return nil, err
	}
	approved = domain.DesignAgenda(st.agendas)
	if approved == nil {
		return nil, precondition("meeting %s has no design agenda to approve", st.meeting.ID)
	}
	fields["agenda"] = approved.IRI
	if err = lc.repos.Agendas.SetStatus(ctx, approved.IRI, domain.AgendaApproved, lc.now()); err != nil {
		return nil, err
	}
	approved.Status = domain.AgendaApproved
	return approved, nil
}

// AgendaOverview is one agenda with its items in display order.
type AgendaOverview struct {
	Agenda *domain.Agenda
	Items  []*domain.Item
}

// Overview is a read-only snapshot of a meeting.
type Overview struct {
	Meeting *domain.Meeting
	Agendas []AgendaOverview
}

func (lc *Lifecycle) Overview(ctx context.Context, meetingIRI string) (*Overview, error) {
	st, err := lc.load(ctx, meetingIRI)
	if err != nil {
		return nil, err
	}
	ov := &Overview{Meeting: st.meeting}
	for _, a := range st.agendas {
		items, err := lc.repos.Items.ListByAgenda(ctx, a.IRI)
		if err != nil {
			return nil, err
		}
		domain.SortItems(items)
		ov.Agendas = append(ov.Agendas, AgendaOverview{Agenda: a, Items: items})
	}
	return ov, nil
}

func itemIRIs(items []*domain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.IRI
	}
	return out
}
