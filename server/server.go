package server

import (
	"call-insights/filter"
	"call-insights/metrics"
	"call-insights/models"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// DashboardSource is what the server needs from the pipeline.
type DashboardSource interface {
	Dashboard(spec filter.Spec) *models.Dashboard
	FilterOptions() models.FilterOptions
}

// dashboardQuery mirrors the query string of GET /api/dashboard.
type dashboardQuery struct {
	Agents  []string `validate:"dive,required"`
	Reasons []string `validate:"dive,required"`
	From    string   `validate:"required_with=To,omitempty,datetime=2006-01-02"`
	To      string   `validate:"required_with=From,omitempty,datetime=2006-01-02"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes dashboards as JSON for the presentation layer.
type Server struct {
	source   DashboardSource
	logger   zerolog.Logger
	validate *validator.Validate
}

// New creates a server backed by source.
func New(source DashboardSource, logger zerolog.Logger) *Server {
	return &Server{
		source:   source,
		logger:   logger,
		validate: validator.New(),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/filters", s.handleFilters)
	})
	return r
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := dashboardQuery{
		Agents:  q["agent"],
		Reasons: q["reason"],
		From:    q.Get("from"),
		To:      q.Get("to"),
	}
	spec, err := s.parseQuery(query)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}
	render.JSON(w, r, s.source.Dashboard(spec))
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.source.FilterOptions())
}

// parseQuery validates the query and converts it to a filter spec.
func (s *Server) parseQuery(query dashboardQuery) (filter.Spec, error) {
	if err := s.validate.Struct(query); err != nil {
		return filter.Spec{}, fmt.Errorf("invalid query: %w", err)
	}
	spec := filter.Spec{Agents: query.Agents, Reasons: query.Reasons}
	if query.From == "" {
		return spec, nil
	}
	// Validated above, so these parse.
	from, _ := models.ParseDate(query.From)
	to, _ := models.ParseDate(query.To)
	spec.DateRange = &filter.DateRange{Start: from, End: to}
	return spec, nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()

		if strings.HasPrefix(route, "/metrics") {
			return
		}
		s.logger.Info().
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("elapsed", time.Since(start)).
			Msg("request served")
	})
}
