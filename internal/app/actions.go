// Package app is the action surface shared by the HTTP and CLI front ends.
// It resolves external ids, serializes actions with the guard, waits for
// the cache to settle after a successful write, and turns errors into
// ActionError payloads.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/guard"
	"github.com/alexanderramin/agendacycle/internal/repository"
	"github.com/alexanderramin/agendacycle/internal/service"
)

// Recorder receives outcomes the controller never sees.
type Recorder interface {
	RecordAction(action string, code domain.Code, seconds float64)
}

type noopRecorder struct{}

func (noopRecorder) RecordAction(string, domain.Code, float64) {}

type Actions struct {
	lifecycle *service.Lifecycle
	locator   repository.EntityLocator
	guard     *guard.Guard
	settler   service.Settler
	recorder  Recorder
	logger    *slog.Logger
}

type Option func(*Actions)

func WithSettler(s service.Settler) Option {
	return func(a *Actions) {
		if s != nil {
			a.settler = s
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(a *Actions) {
		if r != nil {
			a.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Actions) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewActions(lc *service.Lifecycle, locator repository.EntityLocator, g *guard.Guard, opts ...Option) *Actions {
	a := &Actions{
		lifecycle: lc,
		locator:   locator,
		guard:     g,
		settler:   service.NoopSettler{},
		recorder:  noopRecorder{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// write runs fn under the meeting's guard key and settles before the key is
// released, so the next caller reads what fn wrote.
func (a *Actions) write(ctx context.Context, action, meetingID string, fn func(ctx context.Context, meetingIRI string) error) error {
	start := time.Now()
	release, err := a.guard.Acquire(ctx, meetingID)
	if err != nil {
		code := domain.CodeOf(err)
		if code == domain.CodeBusy {
			a.recorder.RecordAction(action, code, time.Since(start).Seconds())
		}
		a.logger.WarnContext(ctx, "action rejected", "action", action, "meeting", meetingID, "error", err)
		return NewActionError(err)
	}
	defer release()

	meetingIRI, err := a.locator.MeetingIRI(ctx, meetingID)
	if err != nil {
		return NewActionError(err)
	}
	if err := fn(ctx, meetingIRI); err != nil {
		return NewActionError(err)
	}
	a.settler.Settle(ctx)
	return nil
}

// ApproveAgenda approves the design agenda and returns the new design agenda.
func (a *Actions) ApproveAgenda(ctx context.Context, meetingID string) (*AgendaResult, error) {
	var out *domain.Agenda
	err := a.write(ctx, "approve", meetingID, func(ctx context.Context, iri string) error {
		var err error
		out, err = a.lifecycle.Approve(ctx, iri)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agendaResult(meetingID, out), nil
}

func (a *Actions) ApproveAgendaAndCloseMeeting(ctx context.Context, meetingID string) (*AgendaResult, error) {
	var out *domain.Agenda
	err := a.write(ctx, "approve-and-close", meetingID, func(ctx context.Context, iri string) error {
		var err error
		out, err = a.lifecycle.ApproveAndClose(ctx, iri)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agendaResult(meetingID, out), nil
}

// CloseMeeting returns the last approved agenda, now closed.
func (a *Actions) CloseMeeting(ctx context.Context, meetingID string) (*AgendaResult, error) {
	var out *domain.Agenda
	err := a.write(ctx, "close", meetingID, func(ctx context.Context, iri string) error {
		var err error
		out, err = a.lifecycle.CloseMeeting(ctx, iri)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agendaResult(meetingID, out), nil
}

func (a *Actions) ReopenPreviousAgenda(ctx context.Context, meetingID string) (*AgendaResult, error) {
	var out *domain.Agenda
	err := a.write(ctx, "reopen-previous", meetingID, func(ctx context.Context, iri string) error {
		var err error
		out, err = a.lifecycle.ReopenPrevious(ctx, iri)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agendaResult(meetingID, out), nil
}

func (a *Actions) CreateDesignAgenda(ctx context.Context, meetingID string) (*AgendaResult, error) {
	var out *domain.Agenda
	err := a.write(ctx, "create-design-agenda", meetingID, func(ctx context.Context, iri string) error {
		var err error
		out, err = a.lifecycle.CreateDesignAgenda(ctx, iri)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agendaResult(meetingID, out), nil
}

func (a *Actions) ApproveOnly(ctx context.Context, meetingID string) (*AgendaResult, error) {
	var out *domain.Agenda
	err := a.write(ctx, "approve-only", meetingID, func(ctx context.Context, iri string) error {
		var err error
		out, err = a.lifecycle.ApproveOnly(ctx, iri)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agendaResult(meetingID, out), nil
}

func (a *Actions) DeleteAgenda(ctx context.Context, meetingID, agendaID string) error {
	return a.write(ctx, "delete-agenda", meetingID, func(ctx context.Context, iri string) error {
		agendaIRI, err := a.locator.AgendaIRI(ctx, agendaID)
		if err != nil {
			return err
		}
		return a.lifecycle.DeleteAgenda(ctx, iri, agendaIRI)
	})
}

// Overview is read-only and does not take the guard.
func (a *Actions) Overview(ctx context.Context, meetingID string) (*MeetingView, error) {
	iri, err := a.locator.MeetingIRI(ctx, meetingID)
	if err != nil {
		return nil, NewActionError(err)
	}
	ov, err := a.lifecycle.Overview(ctx, iri)
	if err != nil {
		return nil, NewActionError(err)
	}
	return meetingView(ov), nil
}
