package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/guard"
	"github.com/alexanderramin/agendacycle/internal/repository"
	"github.com/alexanderramin/agendacycle/internal/service"
	"github.com/alexanderramin/agendacycle/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSettler struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSettler) Settle(context.Context) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

type recordedAction struct {
	action string
	code   domain.Code
}

type fakeRecorder struct {
	mu      sync.Mutex
	actions []recordedAction
}

func (r *fakeRecorder) RecordAction(action string, code domain.Code, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, recordedAction{action, code})
}

type env struct {
	fx       *testutil.Fixture
	guard    *guard.Guard
	settler  *countingSettler
	recorder *fakeRecorder
	actions  *Actions
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := testutil.NewTestStore(t)
	cfg := service.Config{GraphPartition: testutil.TestPartition, BatchSize: service.DefaultBatchSize}
	g := guard.New(guard.Config{Scope: guard.ScopeMeeting, PollInterval: 5 * time.Millisecond, MaxWait: 30 * time.Millisecond})
	e := &env{
		fx:       testutil.NewFixture(t, store),
		guard:    g,
		settler:  &countingSettler{},
		recorder: &fakeRecorder{},
	}
	e.actions = NewActions(
		service.NewLifecycle(store, cfg),
		repository.NewGraphLocator(store),
		g,
		WithSettler(e.settler),
		WithRecorder(e.recorder),
	)
	return e
}

func requireActionError(t *testing.T, err error, code domain.Code) *ActionError {
	t.Helper()
	require.Error(t, err)
	var ae *ActionError
	require.True(t, errors.As(err, &ae), "expected *ActionError, got %T", err)
	assert.Equal(t, code, ae.Code)
	return ae
}

func TestActions_ApproveAgenda(t *testing.T) {
	e := newEnv(t)
	m := e.fx.Meeting()
	design := e.fx.Agenda(m, domain.AgendaDesign)
	e.fx.Item(design, testutil.WithNumber(1), testutil.WithApproval(domain.ApprovalOK))

	res, err := e.actions.ApproveAgenda(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, res.MeetingID)
	assert.Equal(t, "B", res.Serial)
	assert.Equal(t, domain.AgendaDesign, res.Status)
	assert.NotEmpty(t, res.AgendaID)
	assert.Equal(t, 1, e.settler.calls)
	assert.Zero(t, e.guard.Keys(), "guard key released")
}

func TestActions_UnknownMeeting(t *testing.T) {
	e := newEnv(t)

	_, err := e.actions.ApproveAgenda(context.Background(), "no-such-meeting")
	ae := requireActionError(t, err, domain.CodeNotFound)
	assert.Equal(t, http.StatusNotFound, ae.HTTPStatus())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Zero(t, e.settler.calls, "no settle after a failure")
}

func TestActions_PreconditionFailed(t *testing.T) {
	e := newEnv(t)
	m := e.fx.Meeting()
	e.fx.Agenda(m, domain.AgendaApproved)

	_, err := e.actions.ApproveAgenda(context.Background(), m.ID)
	ae := requireActionError(t, err, domain.CodePreconditionFailed)
	assert.Equal(t, http.StatusPreconditionFailed, ae.HTTPStatus())
	assert.NotEmpty(t, ae.Title)
	assert.Contains(t, ae.Detail, m.ID)
}

func TestActions_BusyWhenGuardHeld(t *testing.T) {
	e := newEnv(t)
	m := e.fx.Meeting()
	e.fx.Agenda(m, domain.AgendaDesign)

	release, err := e.guard.Acquire(context.Background(), m.ID)
	require.NoError(t, err)
	defer release()

	_, err = e.actions.ApproveAgenda(context.Background(), m.ID)
	ae := requireActionError(t, err, domain.CodeBusy)
	assert.Equal(t, http.StatusServiceUnavailable, ae.HTTPStatus())
	require.Len(t, e.recorder.actions, 1)
	assert.Equal(t, recordedAction{"approve", domain.CodeBusy}, e.recorder.actions[0])
}

func TestActions_OtherMeetingNotBlocked(t *testing.T) {
	e := newEnv(t)
	busy := e.fx.Meeting()
	free := e.fx.Meeting()
	e.fx.Agenda(free, domain.AgendaDesign)

	release, err := e.guard.Acquire(context.Background(), busy.ID)
	require.NoError(t, err)
	defer release()

	_, err = e.actions.ApproveOnly(context.Background(), free.ID)
	require.NoError(t, err)
}

func TestActions_CloseAndReopen(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.fx.Meeting()
	approved := e.fx.Agenda(m, domain.AgendaApproved)
	e.fx.Agenda(m, domain.AgendaDesign, testutil.WithPrevious(approved))

	closed, err := e.actions.CloseMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, approved.ID, closed.AgendaID)
	assert.Equal(t, domain.AgendaClosed, closed.Status)

	reopened, err := e.actions.ReopenPreviousAgenda(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, approved.ID, reopened.AgendaID)
	assert.Equal(t, domain.AgendaDesign, reopened.Status)
}

func TestActions_DeleteAgenda(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.fx.Meeting()
	approved := e.fx.Agenda(m, domain.AgendaApproved)
	design := e.fx.Agenda(m, domain.AgendaDesign, testutil.WithPrevious(approved))

	err := e.actions.DeleteAgenda(ctx, m.ID, "no-such-agenda")
	requireActionError(t, err, domain.CodeNotFound)

	require.NoError(t, e.actions.DeleteAgenda(ctx, m.ID, design.ID))
	assert.False(t, e.fx.Exists(design.IRI))
	assert.True(t, e.fx.Exists(m.IRI))
}

func TestActions_Overview(t *testing.T) {
	e := newEnv(t)
	m := e.fx.Meeting()
	a := e.fx.Agenda(m, domain.AgendaDesign)
	e.fx.Item(a, testutil.WithNumber(2))
	e.fx.Item(a, testutil.WithNumber(1), testutil.AsAnnouncement())
	e.fx.Item(a)

	view, err := e.actions.Overview(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, view.ID)
	require.Len(t, view.Agendas, 1)
	items := view.Agendas[0].Items
	require.Len(t, items, 3)
	assert.Equal(t, domain.CategoryNote, items[0].Category)
	require.NotNil(t, items[0].Number)
	assert.Equal(t, 2, *items[0].Number)
	assert.Nil(t, items[1].Number, "unnumbered notes sort after numbered ones")
	assert.Equal(t, domain.CategoryAnnouncement, items[2].Category)
	assert.Zero(t, e.settler.calls, "reads do not settle")
}

func TestNewActionError(t *testing.T) {
	assert.Nil(t, NewActionError(nil))

	ae := NewActionError(errors.New("disk on fire"))
	assert.Equal(t, domain.CodeStoreFailure, ae.Code)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus())
	assert.Equal(t, "Graph store failure: disk on fire", ae.Error())

	assert.Same(t, ae, NewActionError(ae))
}
