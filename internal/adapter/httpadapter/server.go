package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	"github.com/couchcryptid/tapwater-report-service/internal/report"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportService is the read API the server exposes.
type ReportService interface {
	Territories(ctx context.Context) ([]string, error)
	Generate(ctx context.Context, territory string) (domain.Report, error)
	LocateTerritory(ctx context.Context, address string) (string, error)
	Contaminant(ctx context.Context, name string) (domain.Contaminant, error)
}

// Server exposes the report API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	reports    ReportService
	topN       int
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /api/v1 report routes. topN is the default split between top and more
// findings when a request does not set one.
func NewServer(addr string, reports ReportService, ready sharedobs.ReadinessChecker, topN int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reports: reports,
		topN:    topN,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/territories", s.handleTerritories)
	mux.HandleFunc("GET /api/v1/reports", s.handleReport)
	mux.HandleFunc("GET /api/v1/contaminants/{name}", s.handleContaminant)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type territoriesResponse struct {
	Territories []string `json:"territories"`
}

func (s *Server) handleTerritories(w http.ResponseWriter, r *http.Request) {
	t, err := s.reports.Territories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if t == nil {
		t = []string{}
	}
	s.writeJSON(w, r, http.StatusOK, territoriesResponse{Territories: t})
}

// reportResponse splits the ranking into the headline findings and the rest.
type reportResponse struct {
	Utility     domain.WaterUtility     `json:"utility"`
	Territory   string                  `json:"territory"`
	Year        int                     `json:"year"`
	Top         []domain.PrimaryFinding `json:"top"`
	More        []domain.PrimaryFinding `json:"more"`
	Secondary   domain.SecondaryIndex   `json:"secondary"`
	Aesthetics  []domain.Aesthetic      `json:"aesthetics"`
	Diagnostics domain.Diagnostics      `json:"diagnostics"`
	GeneratedAt time.Time               `json:"generated_at"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	top := s.topN
	if raw := q.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "top must be a non-negative integer"})
			return
		}
		top = n
	}

	territory := q.Get("territory")
	if address := q.Get("address"); territory == "" && address != "" {
		t, err := s.reports.LocateTerritory(r.Context(), address)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		territory = t
	}
	if strings.TrimSpace(territory) == "" {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "territory or address is required"})
		return
	}

	rep, err := s.reports.Generate(r.Context(), territory)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, reportResponse{
		Utility:     rep.Utility,
		Territory:   rep.Territory,
		Year:        rep.Year,
		Top:         nonNil(rep.Ranking.Top(top)),
		More:        nonNil(rep.Ranking.Rest(top)),
		Secondary:   rep.Secondary,
		Aesthetics:  rep.Aesthetics,
		Diagnostics: rep.Diagnostics,
		GeneratedAt: rep.GeneratedAt,
	})
}

type contaminantResponse struct {
	Contaminant     domain.Contaminant            `json:"contaminant"`
	UnitName        string                        `json:"unit_name"`
	ForeverChemical bool                          `json:"forever_chemical"`
	Filters         []domain.FilterRecommendation `json:"filters"`
}

func (s *Server) handleContaminant(w http.ResponseWriter, r *http.Request) {
	c, err := s.reports.Contaminant(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, contaminantResponse{
		Contaminant:     c,
		UnitName:        c.Unit.Name(),
		ForeverChemical: c.IsForeverChemical(),
		Filters:         c.FilterRecommendations(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, report.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGeocodingDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func nonNil(f []domain.PrimaryFinding) []domain.PrimaryFinding {
	if f == nil {
		return []domain.PrimaryFinding{}
	}
	return f
}

// writeJSON encodes v before writing the status. Encoding failures become a 500.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("encode response", "path", r.URL.Path, "error", err)
		buf.Reset()
		buf.WriteString(`{"error":"failed to encode response"}` + "\n")
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}
