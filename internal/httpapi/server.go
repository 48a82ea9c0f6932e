// Package httpapi exposes the agenda actions over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/agendacycle/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	// Metrics is mounted on /metrics when set.
	Metrics        http.Handler
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

type server struct {
	actions app.AgendaActions
	logger  *slog.Logger
}

// NewRouter builds the route table.
func NewRouter(actions app.AgendaActions, opts Options) http.Handler {
	s := &server{actions: actions, logger: opts.Logger}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/meetings/{meetingID}", func(api chi.Router) {
		if opts.RequestTimeout > 0 {
			api.Use(middleware.Timeout(opts.RequestTimeout))
		}
		api.Post("/approve", s.agendaAction(actions.ApproveAgenda))
		api.Post("/approve-and-close", s.agendaAction(actions.ApproveAgendaAndCloseMeeting))
		api.Post("/close", s.agendaAction(actions.CloseMeeting))
		api.Post("/reopen-previous", s.agendaAction(actions.ReopenPreviousAgenda))
		api.Post("/design-agenda", s.agendaAction(actions.CreateDesignAgenda))
		api.Post("/approve-only", s.agendaAction(actions.ApproveOnly))
		api.Delete("/agendas/{agendaID}", s.deleteAgenda)
		api.Get("/agendas", s.overview)
	})
	return r
}

type agendaFunc func(ctx context.Context, meetingID string) (*app.AgendaResult, error)

func (s *server) agendaAction(fn agendaFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := fn(r.Context(), chi.URLParam(r, "meetingID"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": res})
	}
}

func (s *server) deleteAgenda(w http.ResponseWriter, r *http.Request) {
	err := s.actions.DeleteAgenda(r.Context(), chi.URLParam(r, "meetingID"), chi.URLParam(r, "agendaID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) overview(w http.ResponseWriter, r *http.Request) {
	view, err := s.actions.Overview(r.Context(), chi.URLParam(r, "meetingID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": view})
}

type errorBody struct {
	Errors []*app.ActionError `json:"errors"`
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := app.NewActionError(err)
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.WarnContext(r.Context(), "action timed out", "path", r.URL.Path)
	}
	writeJSON(w, ae.HTTPStatus(), errorBody{Errors: []*app.ActionError{ae}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.DebugContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Serve runs the server until ctx ends, then shuts it down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("http server listening", "addr", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
