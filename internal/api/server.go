package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jmylchreest/toastd/internal/core"
	"github.com/jmylchreest/toastd/internal/metrics"
	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/toast"
)

// Service is the part of the lifecycle manager the API drives.
type Service interface {
	toast.Notifier
	Entries() []model.Entry
	Stats() toast.Stats
}

// Server serves the control API.
type Server struct {
	svc     Service
	metrics *metrics.Metrics
	logger  *slog.Logger

	httpServer *http.Server
}

// NewServer creates an API server. m may be nil, in which case neither the
// metrics middleware nor /metrics are installed.
func NewServer(svc Service, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, metrics: m, logger: logger}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.show)
		r.Delete("/", s.clearAll)
		r.Post("/failure", s.failure)
		r.Delete("/{id}", s.clear)
		r.Post("/{id}/action", s.invokeAction)
	})
	r.Get("/status", s.status)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	return r
}

// Start listens on addr and serves in the background. Bind errors are
// returned synchronously.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", "error", err)
		}
	}()

	s.logger.Info("http api listening", "addr", ln.Addr().String())
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries := s.svc.Entries()

	opts := core.FilterOptions{
		Color:  model.Color(q.Get("color")),
		Search: q.Get("q"),
	}
	if v := q.Get("phase"); v != "" {
		phase, err := model.ParsePhase(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Phase = &phase
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = limit
	}

	if v := q.Get("filter"); v != "" {
		expr, err := core.ParseFilter(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		entries = core.FilterWithExpr(entries, expr)
	}

	core.Sort(entries, core.SortOptions{
		Field: core.ParseSortField(q.Get("sort")),
		Order: core.ParseSortOrder(q.Get("order")),
	})
	entries = core.Filter(entries, opts)
	if entries == nil {
		entries = []model.Entry{}
	}

	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) show(w http.ResponseWriter, r *http.Request) {
	var req ShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("invalid request body for show", "error", err)
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.writeError(w, http.StatusBadRequest, model.ErrEmptyTitle.Error())
		return
	}

	opts := []toast.Option{
		toast.WithContent(req.Content),
		toast.WithIcon(req.Icon),
		toast.WithColor(req.Color),
	}
	if req.Action != nil && req.Action.Key != "" {
		label := req.Action.Label
		if label == "" {
			label = req.Action.Key
		}
		opts = append(opts, toast.WithAction(&model.Action{Key: req.Action.Key, Label: label}))
	}

	id := s.svc.Show(req.Title, opts...)
	s.writeJSON(w, http.StatusCreated, ShowResponse{ID: id})
}

func (s *Server) failure(w http.ResponseWriter, r *http.Request) {
	var req FailureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := toast.ReportFailure(s.svc, req.Reason)
	s.writeJSON(w, http.StatusCreated, ShowResponse{ID: id})
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if !s.svc.Clear(entry.Notification.ID) {
		// Expired between lookup and clear.
		s.writeError(w, http.StatusNotFound, core.ErrNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearAll(w http.ResponseWriter, r *http.Request) {
	n := s.svc.ClearAll()
	s.writeJSON(w, http.StatusOK, ClearAllResponse{Cleared: n})
}

func (s *Server) invokeAction(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	err := toast.InvokeAction(r.Context(), s.svc, entry.Notification)
	switch {
	case errors.Is(err, toast.ErrNoAction):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error("action failed", "id", entry.Notification.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, StatusFromStats(s.svc.Stats()))
}

// lookup resolves an id or unique id prefix, writing the error response
// when it fails.
func (s *Server) lookup(w http.ResponseWriter, id string) (*model.Entry, bool) {
	entry, err := core.LookupByID(s.svc.Entries(), id)
	switch {
	case errors.Is(err, core.ErrAmbiguous):
		s.writeError(w, http.StatusConflict, err.Error())
		return nil, false
	case err != nil:
		s.writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return entry, true
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg})
}
