package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/internal/presentation/graph"
	"github.com/aretw0/cadence/pkg/catalog"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/params"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxUploadSize bounds the multipart body of POST /catalog.
const DefaultMaxUploadSize = 1 << 20

// Station is the part of cadence.Station the server drives.
type Station interface {
	StartWithTiming(ctx context.Context, trials []domain.Trial, timing session.Timing) (bool, error)
	Abort(ctx context.Context) (bool, error)
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	Info() cadence.Info
}

// Server exposes the operator controls of a station over HTTP.
type Server struct {
	Station Station
	Store   ports.ParamStore
	Streams *StreamManager

	metrics   http.Handler
	logger    *slog.Logger
	maxUpload int64
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxUploadSize bounds the catalog upload body in bytes.
func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// NewServer creates a server for station persisting parameters in store.
func NewServer(station Station, store ports.ParamStore, opts ...Option) *Server {
	s := &Server{
		Station:   station,
		Store:     store,
		logger:    logging.NewNop(),
		maxUpload: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", s.GetCatalog)
		r.Post("/", s.PostCatalog)
		r.Delete("/", s.DeleteCatalog)
	})

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Post("/start", s.StartSession)
		r.Post("/abort", s.AbortSession)
	})

	r.Get("/events", s.SubscribeEvents)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Publish forwards a phase change to every event stream. It never blocks and
// can be passed to Station.Subscribe.
func (s *Server) Publish(ev domain.PhaseChanged) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("failed to marshal phase event", "err", err)
		return
	}
	s.Streams.Broadcast(string(data))
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// InfoResponse describes the station's fixed configuration.
type InfoResponse struct {
	App           string `json:"app"`
	Version       string `json:"version"`
	Cycle         string `json:"cycle"`
	TaskStartAt   string `json:"task_start_at"`
	FixationMinMS int64  `json:"fixation_min_ms"`
	FixationMaxMS int64  `json:"fixation_max_ms"`
	InstructionMS int64  `json:"instruction_ms"`
	ExecuteMS     int64  `json:"execute_ms"`
	GraceMS       int64  `json:"grace_ms"`
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	info := s.Station.Info()
	writeJSON(w, http.StatusOK, InfoResponse{
		App:           "cadence-http",
		Version:       cadence.Version,
		Cycle:         string(info.Cycle),
		TaskStartAt:   string(info.TaskStartAt),
		FixationMinMS: info.Timing.FixationMin.Milliseconds(),
		FixationMaxMS: info.Timing.FixationMax.Milliseconds(),
		InstructionMS: info.Timing.Instruction.Milliseconds(),
		ExecuteMS:     info.Timing.Execute.Milliseconds(),
		GraceMS:       info.Timing.Grace.Milliseconds(),
	})
}

// GetGraph handles the GET /graph request with a Mermaid diagram of the
// cycle, highlighting the live phase.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	info := s.Station.Info()
	var overlay *graph.Overlay
	if snap, err := s.Station.Snapshot(r.Context()); err == nil {
		overlay = &graph.Overlay{Current: snap.Phase}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(graph.Cycle{
		Cycle:       info.Cycle,
		TaskStartAt: info.TaskStartAt,
		Timing:      info.Timing,
	}, overlay))
}

// CatalogResponse is the prepared trial list.
type CatalogResponse struct {
	Trials        []domain.Trial `json:"trials"`
	Dropped       int            `json:"dropped,omitempty"`
	FixationMinMS int64          `json:"fixation_min_ms"`
	FixationMaxMS int64          `json:"fixation_max_ms"`
	TaskMS        int64          `json:"task_duration_ms"`
}

func catalogResponse(p params.Params, dropped int) CatalogResponse {
	return CatalogResponse{
		Trials:        p.Trials,
		Dropped:       dropped,
		FixationMinMS: p.FixationMin.Milliseconds(),
		FixationMaxMS: p.FixationMax.Milliseconds(),
		TaskMS:        p.TaskDuration.Milliseconds(),
	}
}

// PostCatalog handles the POST /catalog request: a multipart form with the
// definitions and order tables.
func (s *Server) PostCatalog(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart body: %w", err))
		return
	}

	defsFile, _, err := r.FormFile("definitions")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("missing definitions file"))
		return
	}
	defer defsFile.Close()

	orderFile, _, err := r.FormFile("order")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("missing order file"))
		return
	}
	defer orderFile.Close()

	defs, err := catalog.ParseDefinitions(defsFile, catalog.WithLogger(s.logger))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := catalog.ParseOrder(orderFile, catalog.WithLogger(s.logger))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cat := catalog.New(defs, order)
	p := params.FromTiming(cat.Trials, s.Station.Info().Timing)
	if err := params.Save(r.Context(), s.Store, p); err != nil {
		s.logger.Error("failed to save catalog", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.logger.Info("catalog prepared", "trials", len(cat.Trials), "dropped", cat.Dropped())
	writeJSON(w, http.StatusCreated, catalogResponse(p, cat.Dropped()))
}

// GetCatalog handles the GET /catalog request.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	p, err := params.Load(r.Context(), s.Store, s.Station.Info().Timing)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse(p, 0))
}

// DeleteCatalog handles the DELETE /catalog request.
func (s *Server) DeleteCatalog(w http.ResponseWriter, r *http.Request) {
	if err := params.Clear(r.Context(), s.Store); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartSession handles the POST /session/start request.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	p, err := params.Load(r.Context(), s.Store, s.Station.Info().Timing)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	if len(p.Trials) == 0 {
		writeError(w, http.StatusUnprocessableEntity, errors.New("catalog has no trials"))
		return
	}

	started, err := s.Station.StartWithTiming(r.Context(), p.Trials, p.Apply(s.Station.Info().Timing))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if !started {
		writeError(w, http.StatusConflict, errors.New("session already running"))
		return
	}
	s.GetSession(w, r)
}

// AbortSession handles the POST /session/abort request. Aborting an idle
// session is not an error.
func (s *Server) AbortSession(w http.ResponseWriter, r *http.Request) {
	aborted, err := s.Station.Abort(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"aborted": aborted})
}

// GetSession handles the GET /session request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Station.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNoCatalog) {
		w.Header().Set("Location", "/catalog")
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.logger.Error("failed to load params", "err", err)
	writeError(w, http.StatusInternalServerError, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
