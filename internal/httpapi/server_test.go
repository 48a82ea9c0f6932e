package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/agendacycle/internal/app"
	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/guard"
	"github.com/alexanderramin/agendacycle/internal/metrics"
	"github.com/alexanderramin/agendacycle/internal/repository"
	"github.com/alexanderramin/agendacycle/internal/service"
	"github.com/alexanderramin/agendacycle/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	fx      *testutil.Fixture
	handler http.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := testutil.NewTestStore(t)
	m := metrics.New()
	lc := service.NewLifecycle(store,
		service.Config{GraphPartition: testutil.TestPartition, BatchSize: service.DefaultBatchSize},
		service.WithObservers(m),
	)
	g := guard.New(guard.Config{Scope: guard.ScopeMeeting, PollInterval: time.Millisecond, MaxWait: 10 * time.Millisecond})
	actions := app.NewActions(lc, repository.NewGraphLocator(store), g, app.WithRecorder(m))
	return &env{
		fx:      testutil.NewFixture(t, store),
		handler: NewRouter(actions, Options{Metrics: m.Handler(), RequestTimeout: time.Minute}),
	}
}

func (e *env) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil).WithContext(context.Background())
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *app.ActionError {
	t.Helper()
	var body struct {
		Errors []*app.ActionError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	return body.Errors[0]
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestApprove_ReturnsNewAgenda(t *testing.T) {
	e := newEnv(t)
	m := e.fx.Meeting()
	e.fx.Agenda(m, domain.AgendaDesign)

	rec := e.do(t, http.MethodPost, "/meetings/"+m.ID+"/approve")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data app.AgendaResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "B", body.Data.Serial)
	assert.Equal(t, domain.AgendaDesign, body.Data.Status)
}

func TestApprove_ErrorPayloads(t *testing.T) {
	e := newEnv(t)
	m := e.fx.Meeting()
	e.fx.Agenda(m, domain.AgendaApproved)

	rec := e.do(t, http.MethodPost, "/meetings/unknown/approve")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.CodeNotFound, decodeError(t, rec).Code)

	rec = e.do(t, http.MethodPost, "/meetings/"+m.ID+"/approve")
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	ae := decodeError(t, rec)
	assert.Equal(t, domain.CodePreconditionFailed, ae.Code)
	assert.NotEmpty(t, ae.Detail)
}

func TestDeleteAgenda(t *testing.T) {
	e := newEnv(t)
	m := e.fx.Meeting()
	a := e.fx.Agenda(m, domain.AgendaDesign)

	rec := e.do(t, http.MethodDelete, "/meetings/"+m.ID+"/agendas/"+a.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.False(t, e.fx.Exists(a.IRI))
	assert.False(t, e.fx.Exists(m.IRI), "meeting without approved agendas is deleted")
}

func TestOverview(t *testing.T) {
	e := newEnv(t)
	m := e.fx.Meeting()
	a := e.fx.Agenda(m, domain.AgendaDesign)
	e.fx.Item(a, testutil.WithNumber(1))

	rec := e.do(t, http.MethodGet, "/meetings/"+m.ID+"/agendas")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data app.MeetingView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Agendas, 1)
	assert.Len(t, body.Data.Agendas[0].Items, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	m := e.fx.Meeting()
	e.fx.Agenda(m, domain.AgendaDesign)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/meetings/"+m.ID+"/approve-only").Code)

	rec := e.do(t, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `agendacycle_actions_total{action="approve-only",code="OK"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/meetings/x/approve")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
